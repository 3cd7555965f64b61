package form

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LouisaLyu/System-design-project-3/internal/models"
)

type fakeDialog struct {
	heading string
	open    bool
}

func (d *fakeDialog) Show()               { d.open = true }
func (d *fakeDialog) Close()              { d.open = false }
func (d *fakeDialog) SetHeading(h string) { d.heading = h }

type fakeSaver struct {
	saved models.JournalEntry
	err   error
	calls int
}

func (s *fakeSaver) Save(ctx context.Context, e models.JournalEntry) (models.JournalEntry, error) {
	s.calls++
	s.saved = e
	if s.err != nil {
		return models.JournalEntry{}, s.err
	}
	out := e
	if out.ID == "" {
		out.ID = "new-id"
	}
	return out, nil
}

func TestOpenCreateResetsEverything(t *testing.T) {
	dialog := &fakeDialog{}
	c := NewController(dialog, &fakeSaver{})

	c.OpenEdit(models.JournalEntry{ID: "e1", Title: "old"})
	require.Equal(t, "e1", c.EditingID())

	c.OpenCreate()
	assert.Empty(t, c.EditingID())
	assert.Empty(t, c.Values())
	assert.True(t, c.Visible())
	assert.Equal(t, CreateHeading, dialog.heading)
	assert.True(t, dialog.open)
}

func TestOpenEditPopulatesFields(t *testing.T) {
	dialog := &fakeDialog{}
	c := NewController(dialog, &fakeSaver{})

	c.OpenEdit(models.JournalEntry{
		ID:        "e1",
		Title:     "Trip",
		Body:      "notes",
		Topic:     "travel",
		Tags:      []string{"sea", "sun"},
		MoodColor: "#ffeecc",
		EntryDate: "2025-03-14T00:00:00Z",
	})

	values := c.Values()
	assert.Equal(t, "Trip", values["title"])
	assert.Equal(t, "notes", values["body"])
	assert.Equal(t, "travel", values["topic"])
	assert.Equal(t, "sea, sun", values["tags"])
	assert.Equal(t, "#ffeecc", values["moodColor"])
	// Only the date portion reaches the picker.
	assert.Equal(t, "2025-03-14", values["entryDate"])
	assert.Equal(t, EditHeading, dialog.heading)
}

func TestCancelKeepsEditTarget(t *testing.T) {
	dialog := &fakeDialog{}
	c := NewController(dialog, &fakeSaver{})

	c.OpenEdit(models.JournalEntry{ID: "e1"})
	c.Cancel()

	assert.False(t, c.Visible())
	assert.False(t, dialog.open)
	// Closing is independent of the create/edit distinction; only
	// OpenCreate clears the target.
	assert.Equal(t, "e1", c.EditingID())
}

func TestSubmitCreateStripsID(t *testing.T) {
	saver := &fakeSaver{}
	dialog := &fakeDialog{}
	c := NewController(dialog, saver)
	c.OpenCreate()

	saved, err := c.Submit(context.Background(), map[string]string{
		"title":     "A day",
		"body":      "went well",
		"tags":      "one, two ,,three",
		"entryDate": "2025-06-01",
	})
	require.NoError(t, err)

	assert.Empty(t, saver.saved.ID)
	assert.Equal(t, []string{"one", "two", "three"}, saver.saved.Tags)
	assert.Equal(t, "2025-06-01T00:00:00Z", saver.saved.EntryDate)
	assert.Equal(t, "new-id", saved.ID)

	// Success closes and fully resets the form.
	assert.False(t, c.Visible())
	assert.Empty(t, c.EditingID())
	assert.Empty(t, c.Values())
	assert.Equal(t, CreateHeading, dialog.heading)
}

func TestSubmitEditCarriesID(t *testing.T) {
	saver := &fakeSaver{}
	c := NewController(&fakeDialog{}, saver)
	c.OpenEdit(models.JournalEntry{ID: "e42", Body: "old"})

	_, err := c.Submit(context.Background(), map[string]string{"body": "new"})
	require.NoError(t, err)
	assert.Equal(t, "e42", saver.saved.ID)
	assert.Equal(t, "new", saver.saved.Body)
	assert.Empty(t, c.EditingID())
}

func TestSubmitFailureKeepsModalOpen(t *testing.T) {
	saver := &fakeSaver{err: errors.New("store rejected it")}
	dialog := &fakeDialog{}
	c := NewController(dialog, saver)
	c.OpenEdit(models.JournalEntry{ID: "e1"})

	_, err := c.Submit(context.Background(), map[string]string{"body": "x"})
	require.Error(t, err)

	assert.True(t, c.Visible())
	assert.True(t, dialog.open)
	assert.Equal(t, "e1", c.EditingID())
}

func TestCoerceCheckbox(t *testing.T) {
	assert.True(t, CoerceCheckbox("on"))
	assert.True(t, CoerceCheckbox("true"))
	assert.True(t, CoerceCheckbox("1"))
	assert.False(t, CoerceCheckbox(""))
	assert.False(t, CoerceCheckbox("off"))
}

func TestCoerceNumber(t *testing.T) {
	n := CoerceNumber("3.5")
	require.NotNil(t, n)
	assert.Equal(t, 3.5, *n)

	assert.Nil(t, CoerceNumber(""))
	assert.Nil(t, CoerceNumber("   "))
	assert.Nil(t, CoerceNumber("abc"))
}

func TestCoerceDate(t *testing.T) {
	iso := CoerceDate("2025-03-14")
	require.NotNil(t, iso)
	assert.Equal(t, "2025-03-14T00:00:00Z", *iso)

	assert.Nil(t, CoerceDate(""))
	assert.Nil(t, CoerceDate("  "))
	assert.Nil(t, CoerceDate("14/03/2025"))
}
