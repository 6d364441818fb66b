package patients

import (
	"context"
	"errors"
	"testing"

	"medapp-cli/internal/model"

	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	calls int
	list  []model.Patient
	err   error
}

func (f *fakeLister) FetchPatients(context.Context) ([]model.Patient, error) {
	f.calls++
	return f.list, f.err
}

func samplePatients() []model.Patient {
	return []model.Patient{
		{ID: "1", Name: "Ana Pérez", Phone: "5551234567", Email: "ana@example.test"},
		{ID: "2", Name: "Luis Gómez", Phone: "(555) 987-6543"},
		{ID: "3", Name: "Marta Anaya", Email: "marta@example.test"},
	}
}

func TestSearch_QueryRules(t *testing.T) {
	src := &fakeLister{list: samplePatients()}
	d := NewDirectory(src)
	ctx := context.Background()

	got, ok, err := d.Search(ctx, "")
	require.NoError(t, err)
	require.True(t, ok)
	require.Nil(t, got)

	got, ok, err = d.Search(ctx, "an")
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, got)
	require.Zero(t, src.calls)

	got, ok, err = d.Search(ctx, "ANA")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 2)
	require.Equal(t, "1", got[0].ID)
	require.Equal(t, "3", got[1].ID)
}

func TestSearch_UsesCache(t *testing.T) {
	src := &fakeLister{list: samplePatients()}
	d := NewDirectory(src)
	ctx := context.Background()

	_, _, err := d.Search(ctx, "luis")
	require.NoError(t, err)
	_, _, err = d.Search(ctx, "marta")
	require.NoError(t, err)
	require.Equal(t, 1, src.calls)

	d.Invalidate()
	_, _, err = d.Search(ctx, "marta")
	require.NoError(t, err)
	require.Equal(t, 2, src.calls)
}

func TestSearch_ErrorIsNotCached(t *testing.T) {
	src := &fakeLister{err: errors.New("down")}
	d := NewDirectory(src)

	_, ok, err := d.Search(context.Background(), "luis")
	require.Error(t, err)
	require.True(t, ok)

	src.err = nil
	src.list = samplePatients()
	got, _, err := d.Search(context.Background(), "luis")
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestMatch_PhoneDigitsAndEmail(t *testing.T) {
	list := samplePatients()
	got := Match(list, "987-65")
	require.Len(t, got, 1)
	require.Equal(t, "2", got[0].ID)

	got = Match(list, "marta@")
	require.Len(t, got, 1)
	require.Equal(t, "3", got[0].ID)

	require.Empty(t, Match(list, "zzz"))
}
