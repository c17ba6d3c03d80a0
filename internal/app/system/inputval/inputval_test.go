package inputval

import "testing"

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"maria@example.com", true},
		{"joao.pedro@igreja.org.br", true},
		{"", false},
		{"not-an-email", false},
		{"@example.com", false},
		{"maria@", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestIsValidSlug(t *testing.T) {
	tests := []struct {
		s    string
		want bool
	}{
		{"caminho-de-emaus", true},
		{"reading-plan", true},
		{"Caminho", false},
		{"with space", false},
		{"", false},
		{"-leading", false},
	}

	for _, tt := range tests {
		t.Run(tt.s, func(t *testing.T) {
			if got := IsValidSlug(tt.s); got != tt.want {
				t.Errorf("IsValidSlug(%q) = %v, want %v", tt.s, got, tt.want)
			}
		})
	}
}
