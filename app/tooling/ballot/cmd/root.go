// Package cmd contains the ballot app. It works on a serialized chain file
// offline or talks to the tally service.
package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/ardanlabs/ballot/foundation/blockchain/ledger"
	"github.com/ardanlabs/ballot/foundation/nameservice"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	chainPath  string
	serviceURL string
	regNo      string
	password   string
	namesPath  string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&chainPath, "chain", "c", "zblock/chain.json", "Path to the serialized chain.")
	rootCmd.PersistentFlags().StringVarP(&serviceURL, "url", "u", "http://localhost:3000", "Url of the tally service.")
	rootCmd.PersistentFlags().StringVarP(&namesPath, "names", "n", "", "File of name and address pairs used to display addresses.")
}

var rootCmd = &cobra.Command{
	Use:          "ballot",
	Short:        "Cast, verify and tally votes",
	SilenceUsage: true,
}

// Execute runs the ballot app.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

// credentialFlags adds the flags needed to derive a voter's keys.
func credentialFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&regNo, "reg-no", "r", "", "Registration number of the voter.")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password of the voter, prompted for when empty.")
	cmd.MarkFlagRequired("reg-no")
}

// getPassword returns the password flag or asks for it.
func getPassword() (string, error) {
	if password != "" {
		return password, nil
	}

	return pterm.DefaultInteractiveTextInput.WithMask("*").Show("Password")
}

// loadNames constructs the name service used to display addresses.
func loadNames() (*nameservice.NameService, error) {
	return nameservice.New(namesPath)
}

// loadChain reads the chain file into a ledger.
func loadChain() (*ledger.Ledger, error) {
	data, err := os.ReadFile(chainPath)
	if err != nil {
		return nil, fmt.Errorf("reading chain: %w", err)
	}

	return ledger.FromString(string(data))
}

// storeChain commits any pending transactions and writes the chain file.
func storeChain(l *ledger.Ledger) error {
	s, err := l.Serialize()
	if err != nil {
		return err
	}

	return os.WriteFile(chainPath, []byte(s), 0600)
}

// readAddresses reads one address per line, skipping blank lines.
func readAddresses(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var addrs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			addrs = append(addrs, line)
		}
	}

	return addrs, scanner.Err()
}
