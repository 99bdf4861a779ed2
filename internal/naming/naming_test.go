package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToPascalCase(t *testing.T) {
	t.Parallel()
	tests := []struct{ in, want string }{
		{"admin user", "AdminUser"},
		{"list_pets", "ListPets"},
		{"getByID", "GetByID"},
		{"  --  ", ""},
		{"order-status", "OrderStatus"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToPascalCase(tt.in), tt.in)
	}
}

func TestToCamelCase(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "listPets", ToCamelCase("ListPets"))
	assert.Equal(t, "getPetById", ToCamelCase("get_pet_by_id"))
	assert.Equal(t, "", ToCamelCase(""))
}

func TestToKebabCase(t *testing.T) {
	t.Parallel()
	tests := []struct{ in, want string }{
		{"UserAdmin", "user-admin"},
		{"HTTPServer", "http-server"},
		{"Pet Store", "pet-store"},
		{"assignment", "assignment"},
		{"v2Orders", "v2-orders"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToKebabCase(tt.in), tt.in)
	}
}

func TestToIdentifier(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "AdminUser", ToIdentifier("Admin User"))
	assert.Equal(t, "Value2", ToIdentifier("2"))
	assert.Equal(t, "Value10Items", ToIdentifier("10 items"))
	assert.Equal(t, "", ToIdentifier(" "))
}

func TestIsIdentifier(t *testing.T) {
	t.Parallel()
	assert.True(t, IsIdentifier("Pet"))
	assert.True(t, IsIdentifier("$ref_1"))
	assert.False(t, IsIdentifier("1Pet"))
	assert.False(t, IsIdentifier("Pet[]"))
}

func TestUnique(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"A", "A2", "B", "A3"}, Unique([]string{"A", "A", "B", "A"}))
	assert.Equal(t, []string{"A2", "A", "A3"}, Unique([]string{"A2", "A", "A"}))
	assert.Empty(t, Unique(nil))
}
