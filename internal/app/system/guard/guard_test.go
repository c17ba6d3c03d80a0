package guard

import "testing"

func TestCheck(t *testing.T) {
	member := &Identity{UserID: "u1", Role: "MEMBER"}
	leader := &Identity{UserID: "u2", Role: "LEADER"}
	admin := &Identity{UserID: "u3", Role: "ADMIN"}

	tests := []struct {
		name     string
		id       *Identity
		required RoleSet
		callback string
		fallback string
		want     Outcome
		location string
	}{
		{"anonymous any role", nil, AnyRole(), "/dashboard", "", RedirectLogin, "/login?callbackUrl=%2Fdashboard"},
		{"anonymous admin page", nil, AdminOnly(), "/admin", "", RedirectLogin, "/login?callbackUrl=%2Fadmin"},
		{"anonymous no callback", nil, AnyRole(), "", "", RedirectLogin, "/login"},
		{"member any role", member, AnyRole(), "/member", "", Allow, ""},
		{"member admin page", member, AdminOnly(), "/admin", "", RedirectFallback, "/dashboard"},
		{"member leader page custom fallback", member, Roles("LEADER", "ADMIN"), "/leader", "/member", RedirectFallback, "/member"},
		{"leader leader page", leader, Roles("LEADER", "ADMIN"), "/leader", "", Allow, ""},
		{"admin leader page", admin, Roles("LEADER", "ADMIN"), "/leader", "", Allow, ""},
		{"admin admin page", admin, AdminOnly(), "/admin", "", Allow, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Check(tt.id, tt.required, tt.callback, tt.fallback)
			if d.Outcome != tt.want {
				t.Errorf("outcome: got %v, want %v", d.Outcome, tt.want)
			}
			if d.Location != tt.location {
				t.Errorf("location: got %q, want %q", d.Location, tt.location)
			}
			if d.Outcome == Allow && d.Identity != tt.id {
				t.Error("allow decision should carry the identity")
			}
		})
	}
}

func TestRoleSet_ContainsIgnoresCase(t *testing.T) {
	if !Roles("admin").Contains("ADMIN") {
		t.Error("expected case-insensitive match")
	}
	if Roles("ADMIN").Contains("LEADER") {
		t.Error("LEADER should not match ADMIN set")
	}
}

func TestSafeCallback(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "/dashboard"},
		{"/planos/caminho-de-emaus", "/planos/caminho-de-emaus"},
		{"https://evil.example", "/dashboard"},
		{"//evil.example", "/dashboard"},
		{"/\\evil.example", "/dashboard"},
		{"relative", "/dashboard"},
	}
	for _, tt := range tests {
		if got := SafeCallback(tt.in, "/dashboard"); got != tt.want {
			t.Errorf("SafeCallback(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}
