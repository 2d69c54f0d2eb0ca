// stagemon tails the stage firmware's diagnostic console: homing
// progress, mode toggles, interlock trips and power events. It can also
// poke the firmware for a dump of its diagnostic event ring.
//
// The connection settings come from flags, optionally overridden by a
// [stagemon] section in a config file:
//
//	[stagemon]
//	device=/dev/ttyACM0
//	baud=115200
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/aamcrae/config"

	"stagectl/host/serial"
)

var (
	device     = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud       = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
	configFile = flag.String("config", "", "Optional config file")
	dump       = flag.Bool("dump", false, "Request a diagnostic event ring dump on connect")
	timestamps = flag.Bool("timestamps", true, "Prefix each line with the local receive time")
)

func main() {
	flag.Parse()

	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud
	if *configFile != "" {
		if err := applyConfigFile(cfg, *configFile); err != nil {
			fmt.Fprintf(os.Stderr, "stagemon: %v\n", err)
			os.Exit(1)
		}
	}

	port, err := serial.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "stagemon: %v\n", err)
		os.Exit(1)
	}
	defer port.Close()

	if *dump {
		// Any byte on the console triggers the firmware's ring dump.
		if _, err := port.Write([]byte{'\n'}); err != nil {
			fmt.Fprintf(os.Stderr, "stagemon: dump request: %v\n", err)
			os.Exit(1)
		}
	}

	scanner := bufio.NewScanner(port)
	for scanner.Scan() {
		line := scanner.Text()
		if *timestamps {
			fmt.Printf("%s %s\n", time.Now().Format("15:04:05.000"), line)
		} else {
			fmt.Println(line)
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "stagemon: read: %v\n", err)
		os.Exit(1)
	}
}

// applyConfigFile overrides the connection settings from a [stagemon]
// section. Missing keys keep their flag values.
func applyConfigFile(cfg *serial.Config, file string) error {
	conf, err := config.ParseFile(file)
	if err != nil {
		return fmt.Errorf("config %s: %w", file, err)
	}
	s := conf.GetSection("stagemon")
	if s == nil {
		return fmt.Errorf("config %s: no [stagemon] section", file)
	}
	if dev, err := s.GetArg("device"); err == nil {
		cfg.Device = dev
	}
	var b int
	if n, err := s.Parse("baud", "%d", &b); err == nil && n == 1 {
		cfg.Baud = b
	}
	return nil
}
