package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManagePreferencesRequest_Apply_UnsubscribeAll(t *testing.T) {
	current := Subscriptions{Newsletters: true, Events: true, Announcements: true}
	req := ManagePreferencesRequest{
		UnsubscribeAll: true,
		// unsubscribeAll имеет приоритет над точечными флагами
		Subscriptions: &Subscriptions{Newsletters: true},
	}

	got := req.Apply(current)

	assert.Equal(t, Subscriptions{}, got)
}

func TestManagePreferencesRequest_Apply_SingleCategory(t *testing.T) {
	current := Subscriptions{Newsletters: true, Events: true, Announcements: true}
	req := ManagePreferencesRequest{
		Subscriptions: &Subscriptions{Newsletters: true, Events: false, Announcements: true},
	}

	got := req.Apply(current)

	assert.True(t, got.Newsletters)
	assert.False(t, got.Events)
	assert.True(t, got.Announcements)
}

func TestManagePreferencesRequest_Apply_EmptyRequestKeepsCurrent(t *testing.T) {
	current := Subscriptions{Newsletters: true}

	got := ManagePreferencesRequest{}.Apply(current)

	assert.Equal(t, current, got)
}
