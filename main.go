// Command irtemp reads an infrared thermometer, corrects the object
// temperature for emissivity and notifies it to BLE clients.
package main

import (
	"fmt"
	"os"
)

func main() {
	args := os.Args[1:]
	cmd := "run"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "run":
		err = runDevice(false)
	case "monitor":
		err = runDevice(true)
	case "simulate", "sim":
		err = runSimulate(args)
	case "correct":
		err = runCorrect(args, os.Stdout)
	case "help", "-h", "--help":
		printHelp()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printHelp()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("Usage: irtemp [command]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  run                          read the sensor and notify over BLE (default)")
	fmt.Println("  monitor                      same as run with the live terminal view")
	fmt.Println("  simulate [duration] [-plain] simulated sensor and BLE client")
	fmt.Println("  correct <e> <ambient> <object>")
	fmt.Println("                               print the emissivity-corrected temperature")
	fmt.Println()
	fmt.Println("Configuration comes from IRTEMP_* environment variables or a .env file.")
}
