package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"foodDeliveryAdmin/models"
)

func TestRegistry(t *testing.T) {
	var tokens []string
	r := NewRegistry(func(token string) Backend {
		tokens = append(tokens, token)
		return nil
	}, Deps{Log: discard})

	s1 := &models.Session{ID: "s1", UserID: "u1", AccessToken: "t1"}
	ws := r.For(s1)
	assert.Same(t, ws, r.For(s1))
	assert.Equal(t, []string{"t1"}, tokens)
	assert.Equal(t, "s1", ws.SessionID())

	r.For(&models.Session{ID: "s2", UserID: "u2", AccessToken: "t2"})
	assert.Equal(t, 2, r.Len())

	r.Drop("s1")
	assert.Equal(t, 1, r.Len())
	assert.NotSame(t, ws, r.For(s1), "a dropped workspace is rebuilt")

	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, 2, r.Prune(time.Millisecond))
	assert.Equal(t, 0, r.Len())
}
