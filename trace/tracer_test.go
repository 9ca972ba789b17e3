// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package trace

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisabled(t *testing.T) {
	require := require.New(t)

	tr, err := New(&Config{Enabled: false, AppName: "runnervm"})
	require.NoError(err)

	_, span := tr.Start(context.Background(), "Ledger.Execute")
	require.False(span.SpanContext().IsValid())
	span.End()
	require.NoError(tr.Close())
}

func TestEnabled(t *testing.T) {
	require := require.New(t)

	tr, err := New(&Config{
		Enabled:         true,
		TraceSampleRate: 1,
		Endpoint:        "http://127.0.0.1:1/api/v2/spans",
		AppName:         "runnervm",
		Agent:           "test",
	})
	require.NoError(err)

	_, span := tr.Start(context.Background(), "Ledger.Execute")
	require.True(span.SpanContext().IsValid())
	span.End()
	// export fails against the closed port; shutdown still returns
	_ = tr.Close()
}

func TestNoop(t *testing.T) {
	require := require.New(t)

	tr := Noop()
	ctx, span := tr.Start(context.Background(), "TState.WriteChanges")
	require.False(span.SpanContext().IsValid())
	require.NotNil(ctx)
	span.End()
	require.NoError(tr.Close())
}
