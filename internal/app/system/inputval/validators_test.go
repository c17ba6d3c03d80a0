package inputval

import "testing"

func TestIsValidHTTPURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.abibliadigital.com.br/api", true},
		{"http://localhost:1337/graphql", true},
		{"ftp://example.com", false},
		{"not-a-url", false},
		{"", false},
		{"https://", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := IsValidHTTPURL(tt.url); got != tt.want {
				t.Errorf("IsValidHTTPURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestIsValidObjectID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"507f1f77bcf86cd799439011", true},
		{"507f1f77bcf86cd79943901", false},
		{"zzzzzzzzzzzzzzzzzzzzzzzz", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := IsValidObjectID(tt.id); got != tt.want {
				t.Errorf("IsValidObjectID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	type TestInput struct {
		Name  string `validate:"required,min=2,max=10" label:"Name"`
		Email string `validate:"required,email" label:"Email"`
	}

	tests := []struct {
		name       string
		input      TestInput
		wantErrors bool
		wantFirst  string
	}{
		{
			name:       "valid input",
			input:      TestInput{Name: "Ana", Email: "ana@example.com"},
			wantErrors: false,
		},
		{
			name:       "missing name",
			input:      TestInput{Name: "", Email: "ana@example.com"},
			wantErrors: true,
			wantFirst:  "Name is required.",
		},
		{
			name:       "name too short",
			input:      TestInput{Name: "A", Email: "ana@example.com"},
			wantErrors: true,
			wantFirst:  "Name must be at least 2 characters.",
		},
		{
			name:       "name too long",
			input:      TestInput{Name: "VeryLongNameThatExceedsLimit", Email: "ana@example.com"},
			wantErrors: true,
			wantFirst:  "Name must be at most 10 characters.",
		},
		{
			name:       "invalid email",
			input:      TestInput{Name: "Ana", Email: "not-an-email"},
			wantErrors: true,
			wantFirst:  "A valid email address is required.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(tt.input)

			if result.HasErrors() != tt.wantErrors {
				t.Errorf("Validate() HasErrors = %v, want %v", result.HasErrors(), tt.wantErrors)
			}

			if tt.wantErrors && result.First() != tt.wantFirst {
				t.Errorf("Validate() First() = %q, want %q", result.First(), tt.wantFirst)
			}
		})
	}
}

func TestResult_All(t *testing.T) {
	r := &Result{Errors: []FieldError{{Message: "Error 1"}, {Message: "Error 2"}}}
	if got, want := r.All(), "Error 1; Error 2"; got != want {
		t.Errorf("All() = %q, want %q", got, want)
	}
	if (&Result{}).First() != "" {
		t.Error("First() on empty result should be empty")
	}
}

func TestValidate_CustomRules(t *testing.T) {
	type RoleInput struct {
		Role string `validate:"required,role" label:"Role"`
	}
	type IDInput struct {
		ID string `validate:"required,objectid" label:"Leader"`
	}
	type SlugInput struct {
		Slug string `validate:"required,planslug" label:"Plan"`
	}

	t.Run("valid role", func(t *testing.T) {
		if r := Validate(RoleInput{Role: "LEADER"}); r.HasErrors() {
			t.Errorf("unexpected errors: %v", r.Errors)
		}
	})

	t.Run("lowercase role rejected", func(t *testing.T) {
		r := Validate(RoleInput{Role: "leader"})
		if !r.HasErrors() {
			t.Fatal("expected error")
		}
		if want := "Role must be one of MEMBER, LEADER, ADMIN."; r.First() != want {
			t.Errorf("First() = %q, want %q", r.First(), want)
		}
	})

	t.Run("invalid object id", func(t *testing.T) {
		if r := Validate(IDInput{ID: "abc"}); !r.HasErrors() {
			t.Error("expected error")
		}
	})

	t.Run("valid slug", func(t *testing.T) {
		if r := Validate(SlugInput{Slug: "caminho-de-emaus"}); r.HasErrors() {
			t.Errorf("unexpected errors: %v", r.Errors)
		}
	})
}
