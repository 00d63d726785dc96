package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/walteh/tb/cmd/tb/opts"
	"github.com/walteh/tb/pkg/config"
	"github.com/walteh/tb/pkg/errs"
	"github.com/walteh/tb/pkg/log"
	"github.com/walteh/tb/pkg/operation"
)

type mockOperator struct {
	mock.Mock
}

func (m *mockOperator) Save(ctx context.Context, props operation.SaveProps) error {
	return m.Called(props).Error(0)
}

func (m *mockOperator) Get(ctx context.Context, props operation.GetProps) error {
	return m.Called(props).Error(0)
}

func (m *mockOperator) Delete(ctx context.Context, props operation.DeleteProps) error {
	return m.Called(props).Error(0)
}

func (m *mockOperator) List(ctx context.Context) ([]string, error) {
	args := m.Called()
	names, _ := args.Get(0).([]string)
	return names, args.Error(1)
}

func run(t *testing.T, cmd *cobra.Command, args ...string) error {
	t.Helper()
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
	cmd.SetArgs(args)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	return cmd.ExecuteContext(ctx)
}

func newOpts(op operation.Operator, cfg *config.Config, console *bytes.Buffer) *opts.RootOpts {
	return &opts.RootOpts{
		Config:   cfg,
		Operator: op,
		Logger:   log.New(console, zerolog.Nop()),
	}
}

func TestSaveCmd(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		config *config.Config
		want   operation.SaveProps
	}{
		{
			name: "defaults",
			args: []string{"react", "src/**", "package.json"},
			want: operation.SaveProps{TemplateName: "react", Source: []string{"src/**", "package.json"}},
		},
		{
			name: "all_flags",
			args: []string{"react", "src", "-f", "-p", "-r", "-x", "node_modules,dist", "-x", "*.log"},
			want: operation.SaveProps{
				TemplateName: "react",
				Source:       []string{"src"},
				Options: operation.SaveOptions{
					Force:           true,
					PreserveLastDir: true,
					Recursive:       true,
					Exclude:         []string{"node_modules", "dist", "*.log"},
				},
			},
		},
		{
			name:   "preserve_from_config",
			args:   []string{"react", "src"},
			config: &config.Config{PreserveLastDir: true},
			want: operation.SaveProps{
				TemplateName: "react",
				Source:       []string{"src"},
				Options:      operation.SaveOptions{PreserveLastDir: true},
			},
		},
		{
			name:   "flag_overrides_config",
			args:   []string{"react", "src", "--preserve-last-dir=false"},
			config: &config.Config{PreserveLastDir: true},
			want:   operation.SaveProps{TemplateName: "react", Source: []string{"src"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := &mockOperator{}
			op.On("Save", tt.want).Return(nil).Once()

			err := run(t, NewSaveCmd(newOpts(op, tt.config, &bytes.Buffer{})), tt.args...)
			require.NoError(t, err)
			op.AssertExpectations(t)
		})
	}
}

func TestSaveCmdRequiresSource(t *testing.T) {
	op := &mockOperator{}
	err := run(t, NewSaveCmd(newOpts(op, nil, &bytes.Buffer{})), "react")
	require.Error(t, err)
	op.AssertNotCalled(t, "Save", mock.Anything)
}

func TestGetCmd(t *testing.T) {
	op := &mockOperator{}
	op.On("Get", operation.GetProps{TemplateName: "react"}).Return(nil).Once()
	op.On("Get", operation.GetProps{TemplateName: "react", Destination: "out", Force: true}).Return(nil).Once()

	require.NoError(t, run(t, NewGetCmd(newOpts(op, nil, &bytes.Buffer{})), "react"))
	require.NoError(t, run(t, NewGetCmd(newOpts(op, nil, &bytes.Buffer{})), "react", "out", "--force"))
	op.AssertExpectations(t)

	help := NewGetCmd(newOpts(op, nil, &bytes.Buffer{})).Long
	assert.Contains(t, help, "fails if a destination file\nalready exists unless --force is given")
}

func TestDeleteCmd(t *testing.T) {
	console := &bytes.Buffer{}
	op := &mockOperator{}
	op.On("Delete", operation.DeleteProps{TemplateNames: []string{"a", "b"}}).Return(nil).Once()

	require.NoError(t, run(t, NewDeleteCmd(newOpts(op, nil, console)), "a", "b"))
	assert.Contains(t, console.String(), "Template a deleted")
	assert.Contains(t, console.String(), "Template b deleted")

	failure := &errs.AggregateError{Message: "failed to delete templates", Errors: []error{&errs.TemplateNotFoundError{Name: "missing"}}}
	op.On("Delete", operation.DeleteProps{TemplateNames: []string{"missing"}}).Return(failure).Once()

	err := run(t, NewDeleteCmd(newOpts(op, nil, &bytes.Buffer{})), "missing")
	assert.Equal(t, errs.KindAggregate, errs.KindOf(err))
}

func TestListCmd(t *testing.T) {
	console := &bytes.Buffer{}
	op := &mockOperator{}
	op.On("List").Return([]string{"alpha", "beta"}, nil).Once()

	require.NoError(t, run(t, NewListCmd(newOpts(op, nil, console)), []string{}...))
	assert.Contains(t, console.String(), "alpha")
	assert.Contains(t, console.String(), "beta")

	op.On("List").Return(nil, &errs.NoTemplatesFoundError{}).Once()
	err := run(t, NewListCmd(newOpts(op, nil, &bytes.Buffer{})), []string{}...)
	assert.Equal(t, errs.KindNoTemplates, errs.KindOf(err))
}
