package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nettap/tcpreasm/internal/capture"
	"github.com/nettap/tcpreasm/internal/monitor"
	"github.com/nettap/tcpreasm/internal/reassembly"
	"github.com/nettap/tcpreasm/internal/resolver"
)

func main() {
	var (
		iface          = flag.String("i", "", "network interface to capture from")
		readFile       = flag.String("r", "", "pcap/pcapng file to replay instead of a live interface")
		wsAddr         = flag.String("port", ":8080", "address the summary websocket server listens on")
		filter         = flag.String("f", "", "BPF filter expression")
		verbose        = flag.Bool("v", false, "enable verbose logging")
		removeConnInfo = flag.Bool("remove-conn-info", true, "purge connection metadata after closedDelay")
		closedDelay    = flag.Duration("closed-delay", 5*time.Second, "delay before a closed connection becomes purge-eligible")
		maxClean       = flag.Int("max-clean", 30, "maximum connections purged per cleanup pass")
		resolveHosts   = flag.Bool("resolve", false, "resolve endpoint IPs to hostnames via reverse DNS")
	)
	flag.Parse()

	if (*iface == "") == (*readFile == "") {
		log.Fatal("exactly one of -i or -r is required")
	}

	if *verbose {
		log.Println("[INFO] tcpreasmd: starting")
	}

	var host *resolver.HostResolver
	if *resolveHosts {
		host = resolver.New(10 * time.Minute)
	}

	// The server needs the hub to serve a snapshot on viewer connect, and
	// the hub needs the server's Broadcast to publish updates, so the hub
	// is built first with a deferred callback, then wired to the server.
	var server *monitor.Server
	hub := monitor.NewHub(host, func(s *monitor.ConnectionSummary) {
		if server != nil {
			server.Broadcast(s)
		}
	})
	server = monitor.NewServer(*wsAddr, hub)

	engine := reassembly.New(hub.Callbacks(), reassembly.Config{
		RemoveConnInfo:        *removeConnInfo,
		ClosedConnectionDelay: *closedDelay,
		MaxNumToClean:         *maxClean,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("[ERROR] tcpreasmd: websocket server failed: %v", err)
		}
	}()

	var source packetSource
	if *iface != "" {
		live, err := capture.NewInterfaceCapture(*iface, *filter)
		if err != nil {
			log.Fatalf("[ERROR] tcpreasmd: %v", err)
		}
		defer live.Close()
		source = live
	} else {
		file, err := capture.NewFileCapture(*readFile)
		if err != nil {
			log.Fatalf("[ERROR] tcpreasmd: %v", err)
		}
		defer file.Close()
		source = file
	}

	go func() {
		if err := source.Run(ctx, engine.ReassemblePacket); err != nil && *verbose {
			log.Printf("[INFO] tcpreasmd: capture stopped: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	if *verbose {
		log.Println("[INFO] tcpreasmd: shutting down")
	}
	cancel()
	engine.CloseAllConnections()
}

type packetSource interface {
	Run(ctx context.Context, onPacket func(reassembly.Packet)) error
}
