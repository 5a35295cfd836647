package labeler_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/go-sentsplit/features"
	"github.com/jamesainslie/go-sentsplit/labeler"
	"github.com/jamesainslie/go-sentsplit/labeler/labelertest"
)

func TestTag_String(t *testing.T) {
	assert.Equal(t, "O", labeler.O.String())
	assert.Equal(t, "EOS", labeler.EOS.String())
	assert.Equal(t, "Tag(7)", labeler.Tag(7).String())
}

func TestParseTag(t *testing.T) {
	assert.Equal(t, labeler.EOS, labeler.ParseTag("EOS"))
	assert.Equal(t, labeler.O, labeler.ParseTag("O"))
	assert.Equal(t, labeler.O, labeler.ParseTag("B"))
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	bundles := features.Extract([]rune("Hi. Yo."), 2)

	tags, err := labeler.Run(ctx, labelertest.Punctuation(), bundles)
	require.NoError(t, err)
	assert.Equal(t, []labeler.Tag{
		labeler.O, labeler.O, labeler.EOS, labeler.O, labeler.O, labeler.O, labeler.EOS,
	}, tags)

	_, err = labeler.Run(ctx, labelertest.Truncating(), bundles)
	assert.ErrorIs(t, err, labeler.ErrLengthMismatch)

	boom := errors.New("boom")
	_, err = labeler.Run(ctx, labelertest.Failing(boom), bundles)
	assert.ErrorIs(t, err, boom)
}

func TestRun_EmptyInputSkipsLabeler(t *testing.T) {
	tags, err := labeler.Run(context.Background(), labelertest.Failing(errors.New("unused")), nil)
	require.NoError(t, err)
	assert.Empty(t, tags)
}

func TestShared(t *testing.T) {
	closed := 0
	inner := &closeCounter{Labeler: labelertest.Punctuation(), n: &closed}
	backend := labeler.Shared{Labeler: inner}

	l, err := backend.NewLabeler()
	require.NoError(t, err)
	require.NoError(t, l.Close())
	assert.Equal(t, 0, closed, "instance close must not release the shared labeler")

	require.NoError(t, backend.Close())
	assert.Equal(t, 1, closed)

	_, err = labeler.Shared{}.NewLabeler()
	assert.Error(t, err)
}

type closeCounter struct {
	labeler.Labeler
	n *int
}

func (c *closeCounter) Close() error {
	*c.n++
	return nil
}
