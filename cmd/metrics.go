package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"facesort/internal/metric"
	"facesort/internal/sorter"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "List the available similarity metrics",
	Run: func(cmd *cobra.Command, args []string) {
		registry := metric.NewRegistry(nil)
		fmt.Printf("%-16s %-11s %-9s %s\n", "NAME", "KIND", "GROUPING", "NOTES")
		for _, d := range registry.Descriptors() {
			fmt.Printf("%-16s %-11s %-9s %s\n", d.ID, d.Kind, groupingName(d), metricNotes(d))
		}
	},
}

func init() {
	rootCmd.AddCommand(metricsCmd)
}

func groupingName(d metric.Descriptor) string {
	switch d.Group {
	case sorter.GroupEqualSplit:
		return "bins"
	case sorter.GroupThresholdEdge:
		return "edges"
	case sorter.GroupCluster:
		return "cluster"
	default:
		return "none"
	}
}

func metricNotes(d metric.Descriptor) string {
	var notes []string
	if d.NeedsMeta {
		notes = append(notes, "requires alignment metadata")
	}
	if d.Group == sorter.GroupCluster {
		notes = append(notes, fmt.Sprintf("default --threshold %g", d.DefaultThreshold))
	}
	if d.ID == metric.Identity {
		notes = append(notes, "requires an embedding server")
	}
	return strings.Join(notes, ", ")
}
