// Package pixeltest wires snapshot verification into go test.
//
// A package opts in from TestMain:
//
//	var suite *pixeltest.Suite
//
//	func TestMain(m *testing.M) {
//		var err error
//		if suite, err = pixeltest.Setup(); err != nil {
//			fmt.Fprintln(os.Stderr, err)
//			os.Exit(1)
//		}
//		os.Exit(suite.Run(m))
//	}
//
// and asserts with suite.Verify or suite.VerifyView inside tests.
package pixeltest

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sdejongh/pixeltest/pkg/compare"
	"github.com/sdejongh/pixeltest/pkg/config"
	"github.com/sdejongh/pixeltest/pkg/layout"
	"github.com/sdejongh/pixeltest/pkg/logging"
	"github.com/sdejongh/pixeltest/pkg/paths"
	"github.com/sdejongh/pixeltest/pkg/render"
	"github.com/sdejongh/pixeltest/pkg/results"
	"github.com/sdejongh/pixeltest/pkg/snapshot"
	"github.com/sdejongh/pixeltest/pkg/storage"
)

// Runner is satisfied by *testing.M
type Runner interface {
	Run() int
}

// Suite owns the coordinator and the failure aggregator for one test binary
type Suite struct {
	cfg         *config.Config
	screen      render.Screen
	resolver    *paths.Resolver
	coordinator *snapshot.Coordinator
	aggregator  *results.Aggregator
	logger      logging.Logger
	stderr      io.Writer
}

type suiteOptions struct {
	fs         storage.FileSystem
	base       paths.BaseDir
	logger     logging.Logger
	comparator compare.ImageComparator
	stderr     io.Writer
}

// SuiteOption customises NewSuite
type SuiteOption func(*suiteOptions)

// WithFileSystem stores artifacts through fs instead of the local disk
func WithFileSystem(fs storage.FileSystem) SuiteOption {
	return func(o *suiteOptions) { o.fs = fs }
}

// WithBaseDir replaces the base directory strategy from the configuration
func WithBaseDir(base paths.BaseDir) SuiteOption {
	return func(o *suiteOptions) { o.base = base }
}

// WithLogger replaces the logger built from the configuration
func WithLogger(logger logging.Logger) SuiteOption {
	return func(o *suiteOptions) { o.logger = logger }
}

// WithComparator replaces the exact image comparator
func WithComparator(c compare.ImageComparator) SuiteOption {
	return func(o *suiteOptions) { o.comparator = c }
}

// WithOutput sets where Run reports the failure report location
func WithOutput(w io.Writer) SuiteOption {
	return func(o *suiteOptions) { o.stderr = w }
}

// Setup loads the configuration from the environment and builds a suite.
// A missing PIXELTEST_BASE_DIR is returned as a *paths.SetupError.
func Setup(opts ...SuiteOption) (*Suite, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, &paths.SetupError{Reason: "loading configuration", Err: err}
	}
	return NewSuite(cfg, opts...)
}

// NewSuite builds a suite from cfg; a nil cfg uses the defaults
func NewSuite(cfg *config.Config, opts ...SuiteOption) (*Suite, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, &paths.SetupError{Reason: "invalid configuration", Err: err}
	}

	o := suiteOptions{stderr: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		logger, err := logging.New(cfg.Logging.LoggerOptions())
		if err != nil {
			return nil, &paths.SetupError{Reason: "creating logger", Err: err}
		}
		o.logger = logger
	}
	if o.fs == nil {
		local, err := storage.NewLocal("")
		if err != nil {
			return nil, &paths.SetupError{Reason: "opening snapshot storage", Err: err}
		}
		o.fs = local
	}
	if o.base == nil {
		base, err := BaseDirFor(cfg)
		if err != nil {
			return nil, err
		}
		o.base = base
	}
	if o.comparator == nil {
		o.comparator = compare.NewExact()
	}

	logger := o.logger.WithFields(logging.Fields{"component": "pixeltest"})
	screen := render.NewScreen(cfg.Snapshots.NativeScale)
	resolver := paths.NewResolver(o.fs, o.base, screen.NativeScale)

	return &Suite{
		cfg:      cfg,
		screen:   screen,
		resolver: resolver,
		coordinator: snapshot.NewCoordinator(
			layout.NewEngine(),
			resolver,
			o.comparator,
			logger,
			cfg.Snapshots.MissingReference,
		),
		aggregator: results.NewAggregator(o.fs, cfg.Report.Name, logger),
		logger:     o.logger,
		stderr:     o.stderr,
	}, nil
}

// BaseDirFor builds the base directory strategy named by the configuration
func BaseDirFor(cfg *config.Config) (paths.BaseDir, error) {
	switch cfg.Snapshots.Strategy {
	case config.StrategyModule:
		root := cfg.Snapshots.SearchRoot
		if root == "" {
			wd, err := os.Getwd()
			if err != nil {
				return nil, &paths.SetupError{Reason: "resolving module search root", Err: err}
			}
			root = wd
		}
		return paths.NewModuleBase(root), nil
	case config.StrategySource:
		return &paths.SourceBase{}, nil
	default:
		return paths.NewEnvBase(cfg.Snapshots.BaseDir)
	}
}

// Config returns the configuration the suite was built from
func (s *Suite) Config() *config.Config {
	return s.cfg
}

// Screen returns the virtual screen views are rendered on
func (s *Suite) Screen() render.Screen {
	return s.screen
}

// Resolver returns the path resolver
func (s *Suite) Resolver() *paths.Resolver {
	return s.resolver
}

// Aggregator returns the failure aggregator
func (s *Suite) Aggregator() *results.Aggregator {
	return s.aggregator
}

// Run resets the aggregator, runs the tests, writes the failure report and
// returns the exit code for os.Exit.
func (s *Suite) Run(m Runner) int {
	ctx := context.Background()
	s.aggregator.Reset()

	code := m.Run()

	if s.cfg.Report.Enabled {
		path, err := s.aggregator.Flush(ctx)
		if err != nil {
			s.logger.Error(ctx, "failed to flush failure report", err, nil)
		}
		if path != "" {
			fmt.Fprintf(s.stderr, "pixeltest: failure report written to %s\n", path)
		}
	}

	if err := s.logger.Close(); err != nil {
		fmt.Fprintf(s.stderr, "pixeltest: closing log: %v\n", err)
	}
	return code
}
