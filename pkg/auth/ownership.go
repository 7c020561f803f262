package auth

import "strings"

// AuthorizeMutation checks that the given object key lies inside the
// identity's namespace. Keys are namespaced as "<user-id>/...", and a
// bare "<user-id>/" names no object.
func AuthorizeMutation(id *Identity, key string) error {
	if id == nil || id.ID == "" {
		return ErrForbidden
	}

	prefix := id.ID + "/"
	if !strings.HasPrefix(key, prefix) || len(key) == len(prefix) {
		return ErrForbidden
	}

	return nil
}
