package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/san-kum/beamctl/internal/params"
)

// runTuner reads tuning commands line by line and writes them through
// the atomic store while the loop runs. Commands:
//
//	sp <m>    set the target position
//	kp <v>    set the proportional gain
//	ki <v>    set the integral gain
//	kd <v>    set the derivative gain
//	show      print the current tuple
//
// Out-of-range writes are rejected, never clamped silently.
func runTuner(store *params.Store, r io.Reader, w io.Writer) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		name := strings.ToLower(fields[0])
		if name == "show" {
			p := store.Snapshot()
			fmt.Fprintf(w, "sp=%+.3f kp=%.1f ki=%.2f kd=%.1f\n", p.Setpoint, p.Kp, p.Ki, p.Kd)
			continue
		}
		if len(fields) != 2 {
			fmt.Fprintf(w, "usage: sp|kp|ki|kd <value>, or show\n")
			continue
		}

		val, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			fmt.Fprintf(w, "bad value %q: %v\n", fields[1], err)
			continue
		}

		p := store.Snapshot()
		switch name {
		case "sp", "setpoint":
			p.Setpoint = val
		case "kp":
			p.Kp = val
		case "ki":
			p.Ki = val
		case "kd":
			p.Kd = val
		default:
			fmt.Fprintf(w, "unknown parameter %q\n", name)
			continue
		}

		if err := store.Set(p); err != nil {
			fmt.Fprintf(w, "rejected: %v\n", err)
		}
	}
}
