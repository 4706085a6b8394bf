package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"github.com/1broseidon/floatwm/internal/ipc"
)

// wantJSON reports whether output should be JSON: when forced, or when
// stdout is not a terminal so scripts get something parseable.
func wantJSON(force bool) bool {
	return force || !term.IsTerminal(int(os.Stdout.Fd()))
}

func printJSON(w io.Writer, v interface{}) int {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func printStatus(w io.Writer, status *ipc.StatusData) {
	fmt.Fprintf(w, "running:  %v\n", status.DaemonRunning)
	fmt.Fprintf(w, "layout:   %s\n", status.Layout)
	fmt.Fprintf(w, "windows:  %d\n", status.WindowCount)
	if status.Focused != 0 {
		fmt.Fprintf(w, "focused:  0x%x\n", status.Focused)
	}
	fmt.Fprintf(w, "uptime:   %s\n", time.Duration(status.UptimeSeconds)*time.Second)

	s := status.Session
	switch {
	case !s.Active:
		fmt.Fprintln(w, "session:  idle")
	case s.Edges == "":
		fmt.Fprintf(w, "session:  moving 0x%x (grab %d,%d)\n", s.Window, s.GrabX, s.GrabY)
	default:
		fmt.Fprintf(w, "session:  resizing 0x%x edges=%s (grab %d,%d)\n", s.Window, s.Edges, s.GrabX, s.GrabY)
	}
}

func printWindows(w io.Writer, windows []ipc.WindowInfo) {
	if len(windows) == 0 {
		fmt.Fprintln(w, "no managed windows")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tGEOMETRY\tFLAGS\tTITLE")
	for _, win := range windows {
		flags := "-"
		switch {
		case win.Activated && win.Resizing:
			flags = "active,resizing"
		case win.Activated:
			flags = "active"
		case win.Resizing:
			flags = "resizing"
		}
		fmt.Fprintf(tw, "0x%x\t%dx%d+%d+%d\t%s\t%s\n",
			win.ID, win.Width, win.Height, win.X, win.Y, flags, win.Title)
	}
	tw.Flush()
}
