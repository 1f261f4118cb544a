//go:build !integration

package model

import (
	"errors"
	"testing"

	"github.com/kilka221/assistant/internal/domain"
)

func TestNewIdentity(t *testing.T) {
	t.Run("assigns id and trims name", func(t *testing.T) {
		id, err := NewIdentity("  Алекс  ")
		if err != nil {
			t.Fatalf("NewIdentity: %v", err)
		}
		if id.ID == "" {
			t.Error("id must be assigned")
		}
		if id.Name != "Алекс" {
			t.Errorf("name = %q, want trimmed", id.Name)
		}
		if id.CreatedAt.IsZero() {
			t.Error("createdAt must be set")
		}
	})

	t.Run("rejects blank name", func(t *testing.T) {
		for _, name := range []string{"", "   ", "\t\n"} {
			if _, err := NewIdentity(name); !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("NewIdentity(%q) err = %v, want ErrInvalidArgument", name, err)
			}
		}
	})

	t.Run("ids are unique", func(t *testing.T) {
		a, _ := NewIdentity("a")
		b, _ := NewIdentity("b")
		if a.ID == b.ID {
			t.Error("two identities share an id")
		}
	})
}

func TestNewMessageIDs(t *testing.T) {
	// Rapid-fire submissions within the same millisecond must still get
	// distinct, sortable ids.
	seen := make(map[string]bool, 100)
	var prev string
	for i := 0; i < 100; i++ {
		m := NewMessage(RoleUser, "x")
		if seen[m.ID] {
			t.Fatalf("duplicate message id %s", m.ID)
		}
		seen[m.ID] = true
		if prev != "" && m.ID < prev {
			t.Fatalf("ids not monotonic: %s then %s", prev, m.ID)
		}
		prev = m.ID
	}
}
