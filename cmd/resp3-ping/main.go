// Command resp3-ping dials a RESP3-speaking Redis-compatible endpoint, runs the connection
// supervisor, issues one PING, and exits. It exists to give this module's domain-stack CLI
// dependencies (cobra, go-envconfig) a real, separated home outside the core packages, per
// spec §1's "CLI argument parsing" being explicitly out of scope for the core itself.
package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rdb3/resp3"
	"github.com/rdb3/resp3/conn"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	host string
	port string
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&host, "host", "a", "127.0.0.1", "server host")
	flags.StringVarP(&port, "port", "p", "6379", "server port")
}

var rootCmd = &cobra.Command{
	Use:   "resp3-ping",
	Short: "Dial a RESP3 endpoint, run the supervisor, issue one PING",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		envCfg, err := loadEnvConfig(ctx)
		if err != nil {
			return err
		}

		log, err := makeLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		h, p := host, port
		if envCfg.Host != "" {
			h = envCfg.Host
		}
		if envCfg.Port != "" {
			p = envCfg.Port
		}

		stream, err := net.Dial("tcp", net.JoinHostPort(h, p))
		if err != nil {
			return fmt.Errorf("dial %s:%s: %w", h, p, err)
		}

		c := conn.New(log.Named("conn"), 8)
		c.ResetStream(stream)

		endpoint := conn.Endpoint{
			Host:     h,
			Port:     p,
			Username: envCfg.Username,
			Password: envCfg.Password,
		}

		runErrCh := make(chan error, 1)
		go func() {
			err, cancelled := c.Run(ctx, endpoint, conn.DefaultTimeouts())
			if err != nil {
				log.Error("run exited", zap.Error(err), zap.Int("cancelled", cancelled))
			}
			runErrCh <- err
		}()

		var pong string
		req := resp3.NewRequest()
		if err := req.Push("PING"); err != nil {
			return err
		}
		if err := c.Exec(req, resp3.Into[string]{Dest: &pong}); err != nil {
			return fmt.Errorf("ping failed: %w", err)
		}

		log.Info("ping ok", zap.String("reply", pong))

		c.Cancel("run")
		return <-runErrCh
	},
}

func makeLogger() (*zap.Logger, error) {
	logConfig := zap.NewProductionConfig()
	logConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	logConfig.Encoding = "console"
	return logConfig.Build()
}
