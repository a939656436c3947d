package transfer

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// call is one collaborator invocation observed by fakeDeps.
type call struct {
	Stage Stage
	Input any
}

// fakeDeps implements the pipeline collaborators in memory. Buckets whose name starts with "src"
// are treated as sources when telling the two location registrations apart.
type fakeDeps struct {
	mu    sync.Mutex
	calls []call
	seq   int

	// failOn returns the error a call should fail with, nil to succeed.
	failOn func(stage Stage, input any) error
	// emptyOn makes a successful call return no identifier.
	emptyOn map[Stage]bool
}

func newFakeDeps() *fakeDeps {
	return &fakeDeps{emptyOn: map[Stage]bool{}}
}

func (f *fakeDeps) deps() Deps {
	return Deps{Policies: f, Locations: f, Tasks: f}
}

func (f *fakeDeps) record(ctx context.Context, stage Stage, input any, kind string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, call{Stage: stage, Input: input})
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.failOn != nil {
		if err := f.failOn(stage, input); err != nil {
			return "", err
		}
	}
	if f.emptyOn[stage] {
		return "", nil
	}
	f.seq++

	return fmt.Sprintf("arn:aws:datasync:us-east-1:111111111111:%s/%s-%d", kind, kind, f.seq), nil
}

func (f *fakeDeps) UpdateBucketPolicy(ctx context.Context, grant PolicyGrant) error {
	_, err := f.record(ctx, StagePolicyUpdate, grant, "policy")

	return err
}

func (f *fakeDeps) RegisterLocation(ctx context.Context, req LocationRequest) (string, error) {
	stage := StageDestinationLocation
	if strings.HasPrefix(req.Bucket, "src") {
		stage = StageSourceLocation
	}

	return f.record(ctx, stage, req, "location")
}

func (f *fakeDeps) CreateTask(ctx context.Context, req TaskRequest) (string, error) {
	return f.record(ctx, StageTaskCreate, req, "task")
}

func (f *fakeDeps) StartTask(ctx context.Context, req StartRequest) (string, error) {
	return f.record(ctx, StageTaskStart, req, "execution")
}

func (f *fakeDeps) stages() []Stage {
	f.mu.Lock()
	defer f.mu.Unlock()

	stages := make([]Stage, 0, len(f.calls))
	for _, c := range f.calls {
		stages = append(stages, c.Stage)
	}

	return stages
}

func (f *fakeDeps) callsFor(stage Stage) []call {
	f.mu.Lock()
	defer f.mu.Unlock()

	var calls []call
	for _, c := range f.calls {
		if c.Stage == stage {
			calls = append(calls, c)
		}
	}

	return calls
}

func (f *fakeDeps) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = nil
}

// fakeSetup implements the shared resource collaborators.
type fakeSetup struct {
	mu sync.Mutex

	identity    Identity
	identityErr error

	roleErrs  []error
	roleCalls int
	roleReq   RoleRequest

	logErrs  []error
	logCalls int
}

func (f *fakeSetup) deps() SetupDeps {
	return SetupDeps{Identity: f, Roles: f, LogGroups: f}
}

func (f *fakeSetup) AccountIdentity(context.Context) (Identity, error) {
	return f.identity, f.identityErr
}

func (f *fakeSetup) GetOrCreateRole(_ context.Context, req RoleRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.roleReq = req
	f.roleCalls++
	if len(f.roleErrs) >= f.roleCalls && f.roleErrs[f.roleCalls-1] != nil {
		return "", f.roleErrs[f.roleCalls-1]
	}

	return "arn:aws:iam::" + req.AccountID + ":role/" + req.Name, nil
}

func (f *fakeSetup) GetOrCreateLogGroup(_ context.Context, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.logCalls++
	if len(f.logErrs) >= f.logCalls && f.logErrs[f.logCalls-1] != nil {
		return "", f.logErrs[f.logCalls-1]
	}

	return "arn:aws:logs:us-east-1:" + f.identity.AccountID + ":log-group:" + name, nil
}
