// Copyright 2021 FerretDB Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command mongodbhandler runs handler operations against a MongoDB server from the command line.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	_ "golang.org/x/crypto/x509roots/fallback" // register root TLS certificates for minimal Docker images

	"github.com/FerretDB/mongodbhandler/handler"
	"github.com/FerretDB/mongodbhandler/internal/util/ctxutil"
	"github.com/FerretDB/mongodbhandler/internal/util/debugbuild"
	"github.com/FerretDB/mongodbhandler/internal/util/logging"
	"github.com/FerretDB/mongodbhandler/internal/util/must"
	"github.com/FerretDB/mongodbhandler/internal/util/observability"
	"github.com/FerretDB/mongodbhandler/internal/util/version"
)

// Target contains arguments shared by commands working with a single collection.
type Target struct {
	Collection string `arg:""  help:"Collection name."`
	DB         string `default:"" help:"Database name; the first --database is used if empty." name:"db"`
}

// cliFlags represents all command-line commands, fields and flags.
// It's used for parsing the user input.
//
//nolint:vet,lll // for readability
type cliFlags struct {
	URI          string        `default:"mongodb://127.0.0.1:27017/" help:"MongoDB connection string."`
	Database     []string      `default:"test"                       help:"Database to resolve on connect; repeat for more. The first one is the default." short:"d"`
	Timeout      time.Duration `default:"30s"                        help:"Timeout for the whole command."`
	OtelEndpoint string        `default:""                           help:"OTLP/HTTP endpoint for traces; traces are not exported if empty." name:"otel-endpoint"`
	DumpMetrics  bool          `default:"false"                      help:"Dump operation metrics to stderr on exit."`

	Log struct {
		Level  string `default:"${default_log_level}" help:"${help_log_level}"`
		Format string `default:"console"              help:"${help_log_format}" enum:"${enum_log_format}"`
	} `embed:"" prefix:"log-"`

	Version struct{} `cmd:"" help:"Print version to stdout and exit."`

	Ping struct{} `cmd:"" help:"Check that the server is reachable."`

	Find struct {
		Target `embed:""`
		Filter string `default:"{}" help:"Query filter as Extended JSON."`
		Sort   string `default:""   help:"Sort specification as Extended JSON."`
		Skip   int64  `default:"0"  help:"Number of documents to skip."`
		Limit  int64  `default:"0"  help:"Maximum number of documents to return; 0 means no limit."`
	} `cmd:"" help:"Print documents matching the filter."`

	FindOne struct {
		Target `embed:""`
		Filter string `default:"{}" help:"Query filter as Extended JSON."`
	} `cmd:"" help:"Print the first document matching the filter."`

	Insert struct {
		Target    `embed:""`
		Documents []string `arg:"" help:"Documents as Extended JSON." name:"document"`
	} `cmd:"" help:"Insert documents."`

	Update struct {
		Target `embed:""`
		Set    string `arg:""       help:"Fields to set as Extended JSON."`
		Filter string `default:"{}" help:"Query filter as Extended JSON."`
		Many   bool   `default:"false" help:"Update all matching documents, not only the first one."`
	} `cmd:"" help:"Set fields of matching documents."`

	Delete struct {
		Target `embed:""`
		Filter string `default:"{}"    help:"Query filter as Extended JSON."`
		Many   bool   `default:"false" help:"Delete all matching documents, not only the first one."`
	} `cmd:"" help:"Delete matching documents."`

	Count struct {
		Target `embed:""`
		Filter string `default:"{}" help:"Query filter as Extended JSON."`
	} `cmd:"" help:"Count matching documents; -1 means that the collection does not exist."`

	Distinct struct {
		Target `embed:""`
		Field  string `arg:""       help:"Field name."`
		Filter string `default:"{}" help:"Query filter as Extended JSON."`
	} `cmd:"" help:"Print distinct values of the field."`

	Indexes struct {
		Target `embed:""`
	} `cmd:"" help:"Print indexes of the collection."`

	Exists struct {
		Target `embed:""`
	} `cmd:"" help:"Check whether the collection exists."`

	CreateCollection struct {
		Target `embed:""`
		Capped bool  `default:"false" help:"Create a capped collection."`
		Size   int64 `default:"0"     help:"Maximum size of a capped collection in bytes."`
	} `cmd:"" help:"Create a collection."`

	DropCollection struct {
		Target `embed:""`
	} `cmd:"" help:"Drop a collection."`

	RenameCollection struct {
		Target     `embed:""`
		To         string `arg:""          help:"New collection name."`
		DropTarget bool   `default:"false" help:"Drop the target collection if it exists."`
	} `cmd:"" help:"Rename a collection within its database."`

	DropDatabase struct {
		Name string `arg:"" help:"Database name; it must be one of --database."`
	} `cmd:"" help:"Drop a database."`
}

var cli cliFlags

// Additional variables for the kong parsers.
var kongOptions = []kong.Option{
	kong.Vars{
		"default_log_level": defaultLogLevel().String(),

		"enum_log_format": strings.Join(logging.Formats, ","),

		"help_log_format": fmt.Sprintf("Log format: '%s'.", strings.Join(logging.Formats, "', '")),
		"help_log_level":  fmt.Sprintf("Log level: '%s'.", strings.Join(logging.Levels, "', '")),
	},
	kong.DefaultEnvars("MONGODBHANDLER"),
}

func main() {
	kongCtx := kong.Parse(&cli, kongOptions...)

	if kongCtx.Command() == "version" {
		printVersion(os.Stdout)
		return
	}

	if err := run(kongCtx.Command(), os.Stdout); err != nil {
		zap.L().Sugar().Fatalf("Command failed: %s.", err)
	}
}

// defaultLogLevel returns the default log level.
func defaultLogLevel() zapcore.Level {
	if debugbuild.Enabled {
		return zap.DebugLevel
	}

	return zap.WarnLevel
}

// printVersion prints build information to w.
func printVersion(w io.Writer) {
	info := version.Get()

	fmt.Fprintln(w, "version:", info.Version)
	fmt.Fprintln(w, "commit:", info.Commit)
	fmt.Fprintln(w, "dirty:", info.Dirty)
	fmt.Fprintln(w, "debugBuild:", info.DebugBuild)
}

// setupLogger setups zap logger.
func setupLogger() *zap.Logger {
	level, err := zapcore.ParseLevel(cli.Log.Level)
	if err != nil {
		log.Fatal(err)
	}

	logging.Setup(level, cli.Log.Format, "")
	l := zap.L()

	info := version.Get()
	l.Debug(
		"Starting mongodbhandler "+info.Version+"...",
		zap.String("commit", info.Commit),
		zap.Bool("dirty", info.Dirty),
		zap.Bool("debugBuild", info.DebugBuild),
		zap.Any("buildEnvironment", info.BuildEnvironment),
	)

	if debugbuild.Enabled {
		l.Info("This is debug build. The performance will be affected.")
	}

	return l
}

// dumpMetrics dumps all metrics of the given gatherer to w.
func dumpMetrics(w io.Writer, g prometheus.Gatherer) {
	mfs := must.NotFail(g.Gather())

	for _, mf := range mfs {
		must.NotFail(expfmt.MetricFamilyToText(w, mf))
	}
}

// run connects to MongoDB, executes the given command, and disconnects.
func run(cmd string, w io.Writer) (err error) {
	logger := setupLogger()

	if _, err = maxprocs.Set(maxprocs.Logger(logger.Sugar().Debugf)); err != nil {
		logger.Sugar().Warnf("Failed to set GOMAXPROCS: %s.", err)
	}

	shutdown, err := observability.SetupOtel("mongodbhandler", cli.OtelEndpoint)
	if err != nil {
		return err
	}

	defer func() {
		if e := shutdown(context.Background()); e != nil {
			logger.Warn("Failed to shutdown OpenTelemetry", zap.Error(e))
		}
	}()

	h, err := handler.New(&handler.Config{
		URI:           cli.URI,
		DatabaseNames: cli.Database,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	if cli.DumpMetrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(h)

		defer dumpMetrics(os.Stderr, reg)
	}

	ctx, stop := ctxutil.SigTerm(context.Background())
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, cli.Timeout)
	defer cancel()

	connected, err := h.Connect(ctx)
	if err != nil {
		return err
	}

	if !connected {
		return errors.New("failed to connect to MongoDB")
	}

	defer func() {
		// ctx may be already canceled
		dCtx, dCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer dCancel()

		if _, e := h.Disconnect(dCtx); e != nil {
			logger.Warn("Failed to disconnect", zap.Error(e))
		}
	}()

	logger.Debug(fmt.Sprintf("Command: %q", cmd))

	return execute(ctx, h, &cli, cmd, w)
}
