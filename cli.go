package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/ocupoint/leweicam/pkg/lewei"
)

type subcommand func(cam *lewei.Camera, g *globalFlags, args []string) error

var dispatchTable = map[string]subcommand{
	"baud":      cmdBaud,
	"camflip":   cmdCamFlip,
	"config":    cmdConfig,
	"file":      cmdFile,
	"heartbeat": cmdHeartbeat,
	"pic":       cmdPic,
	"pic2":      cmdPic2,
	"rec":       cmdRec,
	"reformat":  cmdReformat,
	"res":       cmdRes,
	"stream":    cmdStream,
	"time":      cmdTime,
	"wifi":      cmdWifi,
}

func cmdHeartbeat(cam *lewei.Camera, g *globalFlags, args []string) error {
	hb, err := cam.Heartbeat()
	if err != nil {
		return err
	}
	printHeartbeat(hb)
	return nil
}

func cmdBaud(cam *lewei.Camera, g *globalFlags, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: baud {get|set RATE}")
	}
	switch args[0] {
	case "get":
		rate, err := cam.GetBaudrate()
		if err != nil {
			return err
		}
		fmt.Println(rate)
		return nil
	case "set":
		if len(args) < 2 {
			return fmt.Errorf("usage: baud set RATE")
		}
		rate, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid rate: %w", err)
		}
		return cam.SetBaudrate(uint32(rate))
	default:
		return fmt.Errorf("usage: baud {get|set RATE}")
	}
}

func cmdCamFlip(cam *lewei.Camera, g *globalFlags, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: camflip {get|set MODE}")
	}
	switch args[0] {
	case "get":
		flip, err := cam.GetCamFlip()
		if err != nil {
			return err
		}
		fmt.Println(flip)
		return nil
	case "set":
		if len(args) < 2 {
			return fmt.Errorf("usage: camflip set MODE")
		}
		mode, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid mode: %w", err)
		}
		return cam.SetCamFlip(lewei.CameraFlip(mode))
	default:
		return fmt.Errorf("usage: camflip {get|set MODE}")
	}
}

func cmdConfig(cam *lewei.Camera, g *globalFlags, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: config {get|set [--wifi-channel CHAN] [--wifi-name NAME] [--wifi-password PASS] [--wifi-security open|wpa2psk] [--camflip MODE]}")
	}
	switch args[0] {
	case "get":
		cfg, err := cam.GetConfig()
		if err != nil {
			return err
		}
		printConfigTable(cfg)
		return nil
	case "set":
		fs := flag.NewFlagSet("config set", flag.ContinueOnError)
		wifiChan := fs.Uint("wifi-channel", 0, "WiFi channel, 1..13 (default: unchanged)")
		wifiName := fs.String("wifi-name", "", "WiFi SSID (default: unchanged)")
		wifiPass := fs.String("wifi-password", "", "WiFi password (default: unchanged)")
		wifiSec := fs.String("wifi-security", "", "WiFi security: open|wpa2psk (default: unchanged)")
		camFlip := fs.String("camflip", "", "camera flip: up|upmirror|downmirror|down (default: unchanged)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}

		cfg, err := cam.GetConfig()
		if err != nil {
			return err
		}
		if *wifiChan != 0 {
			if *wifiChan < 1 || *wifiChan > 13 {
				return fmt.Errorf("invalid --wifi-channel: out of range [1,13]")
			}
			cfg.WiFiChan = uint8(*wifiChan)
		}
		if *wifiName != "" {
			cfg.WiFiName = *wifiName
		}
		if *wifiPass != "" {
			cfg.WiFiPass = *wifiPass
		}
		if *wifiSec != "" {
			switch *wifiSec {
			case "open":
				cfg.WiFiSec = lewei.WiFiSecOpen
			case "wpa2psk":
				cfg.WiFiSec = lewei.WiFiSecWPA2PSK
			default:
				return fmt.Errorf("unknown --wifi-security: %s", *wifiSec)
			}
		}
		if *camFlip != "" {
			flip, err := parseCamFlip(*camFlip)
			if err != nil {
				return err
			}
			cfg.CamFlip = flip
		}
		return cam.SetConfig(cfg)
	default:
		return fmt.Errorf("usage: config {get|set ...}")
	}
}

func parseCamFlip(s string) (lewei.CameraFlip, error) {
	switch s {
	case "up":
		return lewei.FlipUp, nil
	case "upmirror":
		return lewei.FlipUpMirror, nil
	case "downmirror":
		return lewei.FlipDownMirror, nil
	case "down":
		return lewei.FlipDown, nil
	default:
		return 0, fmt.Errorf("unknown --camflip: %s", s)
	}
}

func cmdReformat(cam *lewei.Camera, g *globalFlags, args []string) error {
	return cam.ReformatSD()
}

func cmdRes(cam *lewei.Camera, g *globalFlags, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: res {get|set {720p|1080p}}")
	}
	switch args[0] {
	case "get":
		is1080p, err := cam.Get1080p()
		if err != nil {
			return err
		}
		if is1080p {
			fmt.Println("1080p")
		} else {
			fmt.Println("720p")
		}
		return nil
	case "set":
		if len(args) < 2 {
			return fmt.Errorf("usage: res set {720p|1080p}")
		}
		switch args[1] {
		case "1080p":
			return cam.Set1080p(true)
		case "720p":
			return cam.Set1080p(false)
		default:
			return fmt.Errorf("unknown resolution: %s", args[1])
		}
	default:
		return fmt.Errorf("usage: res {get|set {720p|1080p}}")
	}
}

func cmdTime(cam *lewei.Camera, g *globalFlags, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: time {get|set [--time T]}")
	}
	switch args[0] {
	case "get":
		t, err := cam.GetTime()
		if err != nil {
			return err
		}
		fmt.Println(t.Format(time.RFC3339))
		return nil
	case "set":
		fs := flag.NewFlagSet("time set", flag.ContinueOnError)
		tStr := fs.String("time", "", "time to set, RFC3339 (default: now)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		t := time.Now()
		if *tStr != "" {
			parsed, err := time.Parse(time.RFC3339, *tStr)
			if err != nil {
				return fmt.Errorf("invalid --time: %w", err)
			}
			t = parsed
		}
		return cam.SetTime(t)
	default:
		return fmt.Errorf("usage: time {get|set [--time T]}")
	}
}

func cmdWifi(cam *lewei.Camera, g *globalFlags, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: wifi {restart|set {channel CHAN|defaults|name NAME|password PASS}}")
	}
	switch args[0] {
	case "restart":
		return cam.RestartWiFi()
	case "set":
		if len(args) < 2 {
			return fmt.Errorf("usage: wifi set {channel CHAN|defaults|name NAME|password PASS}")
		}
		switch args[1] {
		case "channel":
			if len(args) < 3 {
				return fmt.Errorf("usage: wifi set channel CHAN")
			}
			ch, err := strconv.ParseUint(args[2], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid channel: %w", err)
			}
			return cam.SetWiFiChannel(uint32(ch))
		case "defaults":
			return cam.SetWiFiDefaults()
		case "name":
			if len(args) < 3 {
				return fmt.Errorf("usage: wifi set name NAME")
			}
			return cam.SetWiFiName(args[2])
		case "password":
			if len(args) < 3 {
				return fmt.Errorf("usage: wifi set password PASS")
			}
			return cam.SetWiFiPassword(args[2])
		default:
			return fmt.Errorf("unknown wifi set target: %s", args[1])
		}
	default:
		return fmt.Errorf("usage: wifi {restart|set ...}")
	}
}

func cmdPic(cam *lewei.Camera, g *globalFlags, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: pic {list|take [--out-file F]}")
	}
	switch args[0] {
	case "list":
		items, err := cam.GetPictureList()
		if err != nil {
			return err
		}
		printPictureList(items)
		return nil
	case "take":
		fs := flag.NewFlagSet("pic take", flag.ContinueOnError)
		outFile := fs.String("out-file", "", "output file (default: timestamped)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		pic, err := cam.TakePicture()
		if err != nil {
			return err
		}
		return writeBinaryOutput(*outFile, "jpg", pic.JPEG, g)
	default:
		return fmt.Errorf("usage: pic {list|take [--out-file F]}")
	}
}

func cmdPic2(cam *lewei.Camera, g *globalFlags, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: pic2 {list [--count N]|take [--out-file F] [--save]}")
	}
	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("pic2 list", flag.ContinueOnError)
		count := fs.Uint("count", 64, "number of entries to list (0..512)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		items, err := cam.ListPictures2(uint32(*count))
		if err != nil {
			return err
		}
		printPictureList(items)
		return nil
	case "take":
		fs := flag.NewFlagSet("pic2 take", flag.ContinueOnError)
		outFile := fs.String("out-file", "", "output file (default: timestamped)")
		save := fs.Bool("save", false, "print the picture's on-device path instead of writing the JPEG locally")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		pic, err := cam.TakePicture2()
		if err != nil {
			return err
		}
		if *save {
			fmt.Println("saved on device:", pic.Path)
			return nil
		}
		return writeBinaryOutput(*outFile, "jpg", pic.JPEG, g)
	default:
		return fmt.Errorf("usage: pic2 {list [--count N]|take [--out-file F] [--save]}")
	}
}

func cmdRec(cam *lewei.Camera, g *globalFlags, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: rec {list|play [--out-file F] INDEX|start [...]|status|stop}")
	}
	switch args[0] {
	case "list":
		items, err := cam.GetRecordList()
		if err != nil {
			return err
		}
		printRecordList(items)
		return nil
	case "status":
		plan, err := cam.GetRecordPlan()
		if err != nil {
			return err
		}
		fmt.Printf("active=%v day_flags=%07b start=%ds end=%ds max_dur=%ds\n",
			plan.Active, plan.DayFlags, plan.StartSecs, plan.EndSecs, plan.MaxDurSecs)
		return nil
	case "start":
		fs := flag.NewFlagSet("rec start", flag.ContinueOnError)
		dayFlags := fs.Uint("days", 0x7f, "7-bit day-of-week mask, Sun=bit0")
		startSecs := fs.Uint("start", 0, "start-of-day seconds")
		endSecs := fs.Uint("end", 86400, "end-of-day seconds")
		maxDur := fs.Uint("max-duration", 600, "maximum clip duration seconds")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		return cam.SetRecordPlan(&lewei.RecordPlan{
			Active:     true,
			DayFlags:   uint32(*dayFlags),
			StartSecs:  uint32(*startSecs),
			EndSecs:    uint32(*endSecs),
			MaxDurSecs: uint32(*maxDur),
		})
	case "stop":
		plan, err := cam.GetRecordPlan()
		if err != nil {
			return err
		}
		plan.Active = false
		return cam.SetRecordPlan(plan)
	case "play":
		fs := flag.NewFlagSet("rec play", flag.ContinueOnError)
		outFile := fs.String("out-file", "", "output file (default: timestamped)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if fs.NArg() == 0 {
			return fmt.Errorf("usage: rec play [--out-file F] INDEX")
		}
		index, err := strconv.Atoi(fs.Arg(0))
		if err != nil {
			return fmt.Errorf("invalid index: %w", err)
		}
		frames, stop, err := cam.StartReplayStream(index)
		if err != nil {
			return err
		}
		return streamToFile(frames, stop, *outFile, "h264", g, func(msg lewei.ReplayFrameMsg) []byte {
			return msg.Frame.Data
		})
	default:
		return fmt.Errorf("usage: rec {list|play [--out-file F] INDEX|start [...]|status|stop}")
	}
}

func cmdStream(cam *lewei.Camera, g *globalFlags, args []string) error {
	if len(args) == 0 || args[0] != "start" {
		return fmt.Errorf("usage: stream start [--low-def] [--out-file F]")
	}
	fs := flag.NewFlagSet("stream start", flag.ContinueOnError)
	lowDef := fs.Bool("low-def", false, "request the camera's reduced-bitrate encoding")
	outFile := fs.String("out-file", "", "output file (default: timestamped)")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	frames, stop, err := cam.StartVideoStream(*lowDef)
	if err != nil {
		return err
	}
	return streamToFile(frames, stop, *outFile, "h264", g, func(msg lewei.VideoFrameMsg) []byte {
		return msg.Frame.Data
	})
}

func cmdFile(cam *lewei.Camera, g *globalFlags, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: file {delete PATH|get [--saveroot DIR] FILE...}")
	}
	switch args[0] {
	case "delete":
		if len(args) < 2 {
			return fmt.Errorf("usage: file delete PATH")
		}
		return cam.DeleteFile(args[1])
	case "get":
		fs := flag.NewFlagSet("file get", flag.ContinueOnError)
		saveroot := fs.String("saveroot", ".", "directory to save downloaded files into")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if fs.NArg() == 0 {
			return fmt.Errorf("usage: file get [--saveroot DIR] FILE...")
		}
		for _, remote := range fs.Args() {
			if err := downloadOneFile(cam, remote, *saveroot, g); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("usage: file {delete PATH|get [--saveroot DIR] FILE...}")
	}
}

// downloadOneFile stages the transfer under a uuid-tagged scratch name and
// promotes it to its final path only once the MD5 verifies.
func downloadOneFile(cam *lewei.Camera, remote, saveroot string, g *globalFlags) error {
	final := saveroot + "/" + baseName(remote)
	staging := stagingPath(final)

	f, err := os.Create(staging)
	if err != nil {
		return fmt.Errorf("create staging file: %w", err)
	}

	ok, err := cam.DownloadFile(remote, f)
	closeErr := f.Close()
	if err != nil {
		os.Remove(staging)
		return err
	}
	if closeErr != nil {
		os.Remove(staging)
		return closeErr
	}
	if !ok {
		os.Remove(staging)
		return fmt.Errorf("md5 mismatch downloading %s", remote)
	}

	if err := os.Rename(staging, final); err != nil {
		os.Remove(staging)
		return fmt.Errorf("promote staged download: %w", err)
	}
	if !g.quiet {
		fmt.Println("downloaded", remote, "->", final)
	}
	return nil
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[i+1:]
		}
	}
	return path
}

// writeBinaryOutput writes data to the resolved output path, or stdout
// when it resolves to "-".
func writeBinaryOutput(explicit, ext string, data []byte, g *globalFlags) error {
	path := resolveOutputPath(explicit, ext)
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	if !g.quiet {
		fmt.Println("wrote", path)
	}
	return nil
}

// streamToFile drains frames onto the resolved output (or stdout),
// installing a SIGINT handler that calls stop so Ctrl-C ends the stream
// cleanly instead of killing the process mid-write. payload extracts
// the H.264 bytes from whichever frame message type T carries.
func streamToFile[T any](frames <-chan T, stop func(), explicit, ext string, g *globalFlags, payload func(T) []byte) error {
	path := resolveOutputPath(explicit, ext)
	var w io.Writer
	if path == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		buffered := bufio.NewWriter(f)
		defer buffered.Flush()
		w = buffered
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt)
	defer signal.Stop(sigc)

	var interrupted atomic.Bool
	go func() {
		if _, ok := <-sigc; ok {
			interrupted.Store(true)
			stop()
		}
	}()

	for msg := range frames {
		if _, err := w.Write(payload(msg)); err != nil {
			stop()
			return err
		}
	}
	if interrupted.Load() && !g.quiet {
		fmt.Println("stream cancelled")
	}
	return nil
}
