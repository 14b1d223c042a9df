package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		path     string
		expected Role
	}{
		{"package.json", RoleFoundation},
		{"db/schema.sql", RoleFoundation},
		{"src/config/app.ts", RoleFoundation},
		{"migrations/001_users.sql", RoleFoundation},
		{"src/lib/format.ts", RoleUtility},
		{"utils/dates.ts", RoleUtility},
		{"src/stringHelpers.ts", RoleUtility},
		{"src/hooks/useAuth.ts", RoleBehavior},
		{"src/useCart.ts", RoleBehavior},
		{"src/components/Button.tsx", RoleUIUnit},
		{"src/components/NavBar.tsx", RoleUIUnit},
		{"src/pages/Home.tsx", RolePage},
		{"routes/dashboard.tsx", RolePage},
		{"src/api/users.ts", RoleEndpoint},
		{"api/checkout.ts", RoleEndpoint},
		{"src/loginHandler.ts", RoleEndpoint},
		{"something/else.tsx", RoleUIUnit},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Classify(tt.path), "path %s", tt.path)
	}
}

func TestFingerprint(t *testing.T) {
	a := Artifact{Path: "src/a.ts", Content: "export const a = 1"}
	b := Artifact{Path: "src/b.ts", Content: "export const b = 2"}

	assert.NotEmpty(t, a.Fingerprint())
	assert.Len(t, a.Fingerprint(), 16)
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())

	// Same content hashes identically regardless of path.
	c := Artifact{Path: "other.ts", Content: "export const a = 1"}
	assert.Equal(t, a.Fingerprint(), c.Fingerprint())
}
