// Package main is the operator CLI for a running akshara server.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

var serverURL = getEnv("AKSHARA_SERVER", "http://localhost:8080")

func main() {
	if len(os.Args) < 2 {
		showHelp()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "collect":
		post("/api/v1/collections", nil)

	case "clean":
		if len(os.Args) < 3 {
			fmt.Println("Usage: akshara-cli clean <raw-artifact-name>")
			os.Exit(1)
		}
		post("/api/v1/cleanings", map[string]string{"artifact": os.Args[2]})

	case "urls":
		runURLs(os.Args[2:])

	case "artifacts":
		kind := "raw"
		if len(os.Args) > 2 {
			kind = os.Args[2]
		}
		get("/api/v1/artifacts?kind=" + kind)

	case "show":
		if len(os.Args) < 4 {
			fmt.Println("Usage: akshara-cli show <raw|clean> <artifact-name>")
			os.Exit(1)
		}
		getText("/api/v1/artifacts/" + os.Args[2] + "/" + os.Args[3])

	case "stats":
		get("/api/v1/stats")

	case "events":
		get("/api/v1/events")

	case "health":
		get("/health")

	default:
		showHelp()
		os.Exit(1)
	}
}

func runURLs(args []string) {
	if len(args) == 0 {
		args = []string{"list"}
	}
	switch args[0] {
	case "list":
		get("/api/v1/urls")
	case "add":
		if len(args) < 2 {
			fmt.Println("Usage: akshara-cli urls add <url> [url...]")
			os.Exit(1)
		}
		post("/api/v1/urls", map[string][]string{"urls": args[1:]})
	case "seed":
		post("/api/v1/urls/seed", nil)
	case "clear":
		del("/api/v1/urls")
	default:
		fmt.Printf("Unknown urls subcommand: %s\n", args[0])
		os.Exit(1)
	}
}

func client() *http.Client {
	// Collection runs block until every URL is fetched; give them room.
	return &http.Client{Timeout: 10 * time.Minute}
}

func get(path string) {
	resp, err := client().Get(serverURL + path)
	finish(resp, err, true)
}

func getText(path string) {
	resp, err := client().Get(serverURL + path)
	finish(resp, err, false)
}

func post(path string, body interface{}) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			fail(err)
		}
		reader = bytes.NewReader(data)
	}
	resp, err := client().Post(serverURL+path, "application/json", reader)
	finish(resp, err, true)
}

func del(path string) {
	req, err := http.NewRequest(http.MethodDelete, serverURL+path, nil)
	if err != nil {
		fail(err)
	}
	resp, err := client().Do(req)
	finish(resp, err, true)
}

func finish(resp *http.Response, err error, prettyJSON bool) {
	if err != nil {
		fail(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		fail(err)
	}
	if prettyJSON {
		var buf bytes.Buffer
		if json.Indent(&buf, data, "", "  ") == nil {
			data = buf.Bytes()
		}
	}
	fmt.Println(string(data))
	if resp.StatusCode >= 400 {
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func showHelp() {
	fmt.Println("akshara-cli - Telugu corpus pipeline CLI")
	fmt.Println("")
	fmt.Println("Usage: akshara-cli <command> [options]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  collect                     Run a collection over the stored URL list")
	fmt.Println("  clean <raw-artifact>        Clean a raw artifact")
	fmt.Println("  urls [list|add|seed|clear]  Manage the URL list")
	fmt.Println("  artifacts [raw|clean]       List artifacts")
	fmt.Println("  show <kind> <name>          Print an artifact's content")
	fmt.Println("  stats                       Corpus and storage statistics")
	fmt.Println("  events                      Recent pipeline events")
	fmt.Println("  health                      Server health")
	fmt.Println("")
	fmt.Println("Environment:")
	fmt.Println("  AKSHARA_SERVER  Server base URL (default http://localhost:8080)")
}
