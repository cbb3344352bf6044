package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nettap/tcpreasm-view/internal/ui"
	"github.com/nettap/tcpreasm-view/internal/wsclient"
)

func main() {
	var (
		host = flag.String("host", "localhost", "daemon host address")
		port = flag.Int("port", 8080, "daemon websocket port")
	)
	flag.Parse()

	client := wsclient.New(*host, *port)
	model := ui.New(client)

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error running tcpreasm-view: %v\n", err)
		os.Exit(1)
	}

	if err := client.Close(); err != nil {
		log.Printf("[WARN] tcpreasm-view: error closing connection: %v", err)
	}
}
