package main

import (
	"fmt"
	"os"
	"strconv"

	"code.cloudfoundry.org/bytefmt"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"

	"github.com/ocupoint/leweicam/pkg/lewei"
)

// resolveOutputPath picks the destination for a binary-output
// subcommand: "-" for stdout, an explicit name if given, or a
// timestamped default otherwise. Existing files at the resolved path
// are rotated aside first.
func resolveOutputPath(explicit, ext string) string {
	if explicit == "-" {
		return "-"
	}
	if explicit != "" {
		rotateExisting(explicit)
		return explicit
	}
	name := timestampedName(ext)
	rotateExisting(name)
	return name
}

func timestampedName(ext string) string {
	return nowStamp() + "." + ext
}

// rotateExisting renames an existing file at path to path.NNN, picking
// the smallest unused NNN, so a fresh write never clobbers prior output.
func rotateExisting(path string) {
	if path == "-" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	for n := 1; ; n++ {
		candidate := path + "." + strconv.Itoa(n)
		if _, err := os.Stat(candidate); err != nil {
			_ = os.Rename(path, candidate)
			return
		}
	}
}

// stagingPath returns a uuid-tagged scratch filename in the same
// directory as final, used so an in-progress download never appears at
// its final name until it has verified successfully.
func stagingPath(final string) string {
	if final == "-" {
		return final
	}
	return final + "." + uuid.NewString() + ".part"
}

func printConfigTable(cfg *lewei.Config) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"field", "value"})
	table.Append([]string{"wifi_chan", strconv.Itoa(int(cfg.WiFiChan))})
	table.Append([]string{"cam_flip", strconv.Itoa(int(cfg.CamFlip))})
	table.Append([]string{"wifi_sec", strconv.Itoa(int(cfg.WiFiSec))})
	table.Append([]string{"wifi_name", cfg.WiFiName})
	table.Append([]string{"time", cfg.Time.String()})
	table.Append([]string{"sd_mounted", strconv.FormatBool(cfg.SDMounted)})
	table.Append([]string{"sd_size", bytefmt.ByteSize(cfg.SDSize)})
	table.Append([]string{"sd_free", bytefmt.ByteSize(cfg.SDFree)})
	table.Append([]string{"version", cfg.Version})
	table.Render()
}

func printHeartbeat(hb *lewei.Heartbeat) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"field", "value"})
	table.Append([]string{"mounted", strconv.FormatBool(hb.Mounted)})
	table.Append([]string{"sd_size", bytefmt.ByteSize(hb.SDSize)})
	table.Append([]string{"sd_free", bytefmt.ByteSize(hb.SDFree)})
	table.Append([]string{"client_count", strconv.Itoa(int(hb.ClientCount))})
	table.Append([]string{"time", hb.Time.String()})
	table.Render()
}

func printRecordList(items []lewei.RecordListItem) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"start", "duration", "path"})
	for _, it := range items {
		table.Append([]string{it.StartTime.String(), fmt.Sprintf("%ds", it.TimeLen), it.Path})
	}
	table.Render()
}

func printPictureList(items []lewei.PictureListItem) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"size", "path"})
	for _, it := range items {
		table.Append([]string{bytefmt.ByteSize(uint64(it.Size)), it.Path})
	}
	table.Render()
}
