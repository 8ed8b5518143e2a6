package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusValid(t *testing.T) {
	for _, s := range Statuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Status("Demande recue").Valid())
	assert.False(t, Status("").Valid())
}

func TestCommentText(t *testing.T) {
	c := "ok"
	assert.Equal(t, "", Inscription{}.CommentText())
	assert.Equal(t, "ok", Inscription{Comment: &c}.CommentText())
	assert.Equal(t, "Dupont Jean", FullNameOf("Dupont", "Jean"))
}
