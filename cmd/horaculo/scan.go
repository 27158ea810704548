package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/jask/horaculo/internal/session"
)

func newScanCmd(flags *globalFlags) *cobra.Command {
	var (
		modeName string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "scan [query]",
		Short: "Run one search without the dashboard and print the engine log",
		Example: `  horaculo scan Oil
  horaculo scan SOL --mode crypto --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := wireApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			mode := a.defaultMode
			if cmd.Flags().Changed("mode") {
				if mode, err = session.ParseMode(modeName); err != nil {
					return err
				}
			}
			req := session.SearchRequest{Query: strings.Join(args, " "), Mode: mode}

			logOut := cmd.OutOrStdout()
			if asJSON {
				logOut = cmd.ErrOrStderr()
			}
			st, err := runScan(cmd.Context(), logOut, a.controller, req)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(st.Result)
			}
			writeSummary(cmd.OutOrStdout(), st)
			return nil
		},
	}
	cmd.Flags().StringVarP(&modeName, "mode", "m", "", "search mode: macro or crypto (default ui.default_mode)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result payload as JSON on stdout")
	return cmd
}

// runScan runs one search and streams its log lines to out as they are
// appended. It returns the final state.
func runScan(ctx context.Context, out io.Writer, ctrl *session.Controller, req session.SearchRequest) (session.State, error) {
	updates, unsubscribe := ctrl.Subscribe()
	printed := 0
	flush := func() {
		logs := ctrl.State().Logs
		for ; printed < len(logs); printed++ {
			fmt.Fprintln(out, logs[printed])
		}
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range updates {
			flush()
		}
	}()

	err := ctrl.InitiateSearch(ctx, req)
	unsubscribe()
	wg.Wait()
	flush()
	return ctrl.State(), err
}

func writeSummary(w io.Writer, st session.State) {
	fmt.Fprintf(w, "\nscreen: %s\n", st.ActiveScreen)
	if st.Mode == session.ModeCrypto {
		raw, err := st.Result.Slice(session.ScreenCrypto)
		if err != nil {
			fmt.Fprintln(w, "no crypto data")
			return
		}
		doc := gjson.ParseBytes(raw)
		fmt.Fprintf(w, "asset: %s\n", doc.Get("asset").String())
		if code := doc.Get("action_signal.code"); code.Exists() {
			fmt.Fprintf(w, "signal: %s\n", code.String())
		}
		if c := doc.Get("metrics.conflict_intensity"); c.Exists() {
			fmt.Fprintf(w, "conflict: %.0f%%\n", c.Float()*100)
		}
		return
	}

	if raw, err := st.Result.Slice(session.ScreenPortal); err == nil {
		if s := gjson.GetBytes(raw, "summary").String(); s != "" {
			fmt.Fprintf(w, "summary: %s\n", s)
		}
	}
	if raw, err := st.Result.Slice(session.ScreenArbitrage); err == nil {
		doc := gjson.ParseBytes(raw)
		c := doc.Get("conflict_intensity")
		if !c.Exists() {
			c = doc.Get("intensity_score")
		}
		fmt.Fprintf(w, "conflict: %.0f%%\n", c.Float()*100)
	}
	if raw, err := st.Result.Slice(session.ScreenStress); err == nil {
		fmt.Fprintf(w, "mood: %s\n", gjson.GetBytes(raw, "mood").String())
	}
}
