package commands

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/tcollab-dev/tcollab/internal/relay"
	"github.com/tcollab-dev/tcollab/internal/replica"
	"github.com/tcollab-dev/tcollab/internal/snapshot"
)

func newExportCommand() *cobra.Command {
	var serverURL string
	var session string
	var out string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download a session snapshot from a running server",
		Long: "Connects to a running tcollab server as a client, waits for the\n" +
			"initial state replay, and writes it as a snapshot document that can\n" +
			"be re-imported into any session.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(serverURL, session, out, timeout)
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "ws://localhost:3000/ws", "websocket URL of the server")
	cmd.Flags().StringVar(&session, "session", "default", "session to export")
	cmd.Flags().StringVar(&out, "out", "-", "output file, - for stdout")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "time to wait for the state replay")

	return cmd
}

func runExport(serverURL, session, out string, timeout time.Duration) error {
	u, err := url.Parse(serverURL)
	if err != nil {
		return fmt.Errorf("parsing server URL: %w", err)
	}
	q := u.Query()
	q.Set("session", session)
	u.RawQuery = q.Encode()

	ws, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", u.String(), err)
	}
	defer ws.Close()

	mirror, err := syncReplica(ws, timeout)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stdout
	if out != "-" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}
		defer f.Close()
		w = f
	}
	return snapshot.Write(w, mirror.Snapshot())
}

// syncReplica consumes events until the initial state replay completes.
func syncReplica(ws *websocket.Conn, timeout time.Duration) (*replica.Replica, error) {
	mirror := replica.New()
	deadline := time.Now().Add(timeout)
	for !mirror.Synced() {
		if err := ws.SetReadDeadline(deadline); err != nil {
			return nil, fmt.Errorf("setting read deadline: %w", err)
		}
		var env relay.Envelope
		if err := ws.ReadJSON(&env); err != nil {
			return nil, fmt.Errorf("reading state replay: %w", err)
		}
		if err := mirror.Apply(env); err != nil {
			return nil, err
		}
	}
	return mirror, nil
}
