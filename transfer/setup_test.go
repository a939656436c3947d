package transfer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/datasync-transfer-framework/operations"
	"github.com/smartcontractkit/datasync-transfer-framework/pkg/logger"
)

func setupBundle(t *testing.T) (operations.Bundle, *operations.MemoryReporter) {
	t.Helper()

	reporter := operations.NewMemoryReporter()

	return operations.NewBundle(t.Context, logger.Test(t), reporter), reporter
}

func testSetupConfig() SetupConfig {
	return SetupConfig{
		RoleName:     "datasync-transfer",
		LogGroupName: "/datasync/transfers",
		Initiator:    SideDestination,
		Retry:        operations.RetryPolicy{MaxAttempts: 3, Delay: time.Millisecond},
	}
}

func newFakeSetup() *fakeSetup {
	return &fakeSetup{identity: Identity{
		AccountID:    "111111111111",
		PrincipalARN: "arn:aws:iam::111111111111:user/operator",
	}}
}

func Test_ResolveOptions(t *testing.T) {
	t.Parallel()

	fake := newFakeSetup()
	b, reporter := setupBundle(t)

	opts, identity, err := ResolveOptions(b, fake.deps(), testSetupConfig())

	require.NoError(t, err)
	assert.Equal(t, fake.identity, identity)
	assert.Equal(t, TransferOptions{
		RoleARN:     "arn:aws:iam::111111111111:role/datasync-transfer",
		Principal:   "arn:aws:iam::111111111111:user/operator",
		LogGroupARN: "arn:aws:logs:us-east-1:111111111111:log-group:/datasync/transfers",
		Initiator:   SideDestination,
	}, opts)
	require.NoError(t, opts.Validate())

	assert.Equal(t, RoleRequest{
		Name:               "datasync-transfer",
		AccountID:          "111111111111",
		SourcePattern:      "*",
		DestinationPattern: "*",
	}, fake.roleReq)
	assert.Equal(t, 1, fake.roleCalls)
	assert.Equal(t, 1, fake.logCalls)

	reports, err := reporter.GetReports()
	require.NoError(t, err)
	require.Len(t, reports, 3)
	assert.Equal(t, "sts-get-caller-identity", reports[0].Def.ID)
	assert.Equal(t, "iam-get-or-create-role", reports[1].Def.ID)
	assert.Equal(t, "logs-get-or-create-log-group", reports[2].Def.ID)
}

func Test_ResolveOptions_PrincipalOverride(t *testing.T) {
	t.Parallel()

	fake := newFakeSetup()
	b, _ := setupBundle(t)
	cfg := testSetupConfig()
	cfg.Principal = "arn:aws:iam::111111111111:role/ops"
	cfg.SourcePattern = "src-*"

	opts, _, err := ResolveOptions(b, fake.deps(), cfg)

	require.NoError(t, err)
	assert.Equal(t, "arn:aws:iam::111111111111:role/ops", opts.Principal)
	assert.Equal(t, "src-*", fake.roleReq.SourcePattern)
	assert.Equal(t, "*", fake.roleReq.DestinationPattern)
}

func Test_ResolveOptions_RetriesLostCreationRace(t *testing.T) {
	t.Parallel()

	fake := newFakeSetup()
	fake.roleErrs = []error{fmt.Errorf("create role: %w", ErrAlreadyExists)}
	fake.logErrs = []error{ErrAlreadyExists, ErrAlreadyExists}
	b, _ := setupBundle(t)

	opts, _, err := ResolveOptions(b, fake.deps(), testSetupConfig())

	require.NoError(t, err)
	assert.NotEmpty(t, opts.RoleARN)
	assert.NotEmpty(t, opts.LogGroupARN)
	assert.Equal(t, 2, fake.roleCalls)
	assert.Equal(t, 3, fake.logCalls)
}

func Test_ResolveOptions_Failures(t *testing.T) {
	t.Parallel()

	denied := errors.New("access denied")

	tests := []struct {
		name          string
		setup         func(f *fakeSetup)
		wantErr       error
		wantErrMsg    string
		wantRoleCalls int
		wantLogCalls  int
	}{
		{
			name:       "identity lookup fails",
			setup:      func(f *fakeSetup) { f.identityErr = denied },
			wantErr:    denied,
			wantErrMsg: "failed to look up caller identity",
		},
		{
			name:       "identity without account",
			setup:      func(f *fakeSetup) { f.identity = Identity{} },
			wantErr:    ErrMalformedResponse,
			wantErrMsg: "caller identity",
		},
		{
			name:          "role failure is not retried",
			setup:         func(f *fakeSetup) { f.roleErrs = []error{denied} },
			wantErr:       denied,
			wantErrMsg:    "failed to get or create role datasync-transfer",
			wantRoleCalls: 1,
		},
		{
			name: "creation race lost on every attempt",
			setup: func(f *fakeSetup) {
				f.roleErrs = []error{ErrAlreadyExists, ErrAlreadyExists, ErrAlreadyExists}
			},
			wantErr:       ErrAlreadyExists,
			wantRoleCalls: 3,
		},
		{
			name:          "log group failure is not retried",
			setup:         func(f *fakeSetup) { f.logErrs = []error{denied} },
			wantErr:       denied,
			wantErrMsg:    "failed to get or create log group /datasync/transfers",
			wantRoleCalls: 1,
			wantLogCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fake := newFakeSetup()
			tt.setup(fake)
			b, _ := setupBundle(t)

			_, _, err := ResolveOptions(b, fake.deps(), testSetupConfig())

			require.ErrorIs(t, err, tt.wantErr)
			if tt.wantErrMsg != "" {
				require.ErrorContains(t, err, tt.wantErrMsg)
			}
			assert.Equal(t, tt.wantRoleCalls, fake.roleCalls)
			assert.Equal(t, tt.wantLogCalls, fake.logCalls)
		})
	}
}

func Test_ResolveOptions_InvalidInput(t *testing.T) {
	t.Parallel()

	fake := newFakeSetup()
	b, _ := setupBundle(t)

	_, _, err := ResolveOptions(b, SetupDeps{Identity: fake, Roles: fake}, testSetupConfig())
	require.ErrorContains(t, err, "missing dependency LogGroups")

	_, _, err = ResolveOptions(b, fake.deps(), SetupConfig{RoleName: "r"})
	require.ErrorContains(t, err, "RoleName and LogGroupName are required")
}

func Test_ResolveOptions_CancelledContext(t *testing.T) {
	t.Parallel()

	fake := newFakeSetup()
	fake.roleErrs = []error{ErrAlreadyExists, ErrAlreadyExists, ErrAlreadyExists}
	ctx, cancel := context.WithCancel(t.Context())
	b := operations.NewBundle(func() context.Context { return ctx }, logger.Nop(), nil)
	cfg := testSetupConfig()
	cfg.Retry.Delay = time.Hour

	done := make(chan error, 1)
	go func() {
		_, _, err := ResolveOptions(b, fake.deps(), cfg)
		done <- err
	}()
	require.Eventually(t, func() bool {
		fake.mu.Lock()
		defer fake.mu.Unlock()

		return fake.roleCalls == 1
	}, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("ResolveOptions did not return after cancellation")
	}
}
