package scrape

import (
	"encoding/json"
	"fmt"
	"slices"
	"text/tabwriter"
	"time"

	"nathanbeddoewebdev/chainwatch/internal/domain"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// printSnapshotJSON encodes a snapshot as indented JSON to stdout.
func printSnapshotJSON(cmd *cobra.Command, snap domain.MetricSnapshot) {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.Encode(snap)
}

// printSnapshotTable prints a vertical field/value table. Fields the
// scrape did not report are left out.
func printSnapshotTable(cmd *cobra.Command, snap domain.MetricSnapshot) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)

	fmt.Fprintln(w, "FIELD\tVALUE")
	fmt.Fprintln(w, "-----\t-----")

	has := snap.Has
	if has.Has(domain.FieldBlockHeight) {
		fmt.Fprintf(w, "block height\t%s\n", humanize.Comma(int64(snap.BlockHeight)))
	}
	if has.Has(domain.FieldFinalizedHeight) {
		fmt.Fprintf(w, "finalized height\t%s\n", humanize.Comma(int64(snap.FinalizedHeight)))
	}
	if has.Has(domain.FieldPeerCount) {
		fmt.Fprintf(w, "peers\t%d (%s)\n", snap.PeerCount, snap.PeerHealth())
	}
	if has.Has(domain.FieldTPS) {
		fmt.Fprintf(w, "tps\t%.1f\n", snap.TPS)
	}
	if has.Has(domain.FieldLatencyP99) {
		fmt.Fprintf(w, "latency p99\t%.1f ms\n", snap.LatencyP99Ms)
	}
	if has.Has(domain.FieldTxCommits) {
		fmt.Fprintf(w, "tx commits\t%s\n", humanize.Comma(int64(snap.TxCommits)))
	}
	if has.Has(domain.FieldPendingTxs) {
		fmt.Fprintf(w, "pending txs\t%s\n", humanize.Comma(int64(snap.PendingTxs)))
	}
	if has.Has(domain.FieldUptime) {
		fmt.Fprintf(w, "uptime\t%s\n", time.Duration(snap.UptimeSeconds*float64(time.Second)).Truncate(time.Second))
	}
	if has.Has(domain.FieldStateSyncTarget) {
		fmt.Fprintf(w, "state sync\t%.2f%%\n", snap.SyncPercent())
	}
	if has.Has(domain.FieldUpstreamValidators) {
		fmt.Fprintf(w, "upstream validators\t%d\n", snap.UpstreamValidators)
	}

	names := make([]string, 0, len(snap.Services))
	for name := range snap.Services {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		state := "down"
		if snap.Services[name] {
			state = "up"
		}
		fmt.Fprintf(w, "service %s\t%s\n", name, state)
	}

	w.Flush()
}
