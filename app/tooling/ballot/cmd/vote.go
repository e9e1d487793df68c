package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ardanlabs/ballot/business/core/tally"
	"github.com/ardanlabs/ballot/business/web/errs"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var candidate string

var voteCmd = &cobra.Command{
	Use:   "vote",
	Short: "Cast a vote in an election on the tally service.",
	RunE:  voteRun,
}

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Print the results of an election on the tally service.",
	RunE:  resultsRun,
}

func init() {
	rootCmd.AddCommand(voteCmd)
	credentialFlags(voteCmd)
	voteCmd.Flags().StringVarP(&electionID, "election", "e", "", "Id of the election.")
	voteCmd.Flags().StringVarP(&candidate, "candidate", "t", "", "Address of the candidate.")
	voteCmd.MarkFlagRequired("election")
	voteCmd.MarkFlagRequired("candidate")

	rootCmd.AddCommand(resultsCmd)
	resultsCmd.Flags().StringVarP(&electionID, "election", "e", "", "Id of the election.")
	resultsCmd.MarkFlagRequired("election")
}

func voteRun(cmd *cobra.Command, args []string) error {
	pass, err := getPassword()
	if err != nil {
		return err
	}

	b := tally.Ballot{
		RegistrationID: regNo,
		Password:       pass,
		Candidate:      candidate,
	}

	var resp struct {
		TxHash string `json:"tx_hash"`
	}

	endpoint := fmt.Sprintf("%s/v1/elections/%s/vote", serviceURL, url.PathEscape(electionID))
	if err := call(http.MethodPost, endpoint, b, &resp); err != nil {
		return err
	}

	pterm.Success.Println("vote committed")
	pterm.Println(resp.TxHash)

	return nil
}

func resultsRun(cmd *cobra.Command, args []string) error {
	var results []tally.Result

	endpoint := fmt.Sprintf("%s/v1/elections/%s/results", serviceURL, url.PathEscape(electionID))
	if err := call(http.MethodGet, endpoint, nil, &results); err != nil {
		return err
	}

	ns, err := loadNames()
	if err != nil {
		return err
	}

	data := pterm.TableData{{"Candidate", "Votes"}}
	for _, r := range results {
		data = append(data, []string{ns.Lookup(r.Candidate), pterm.Sprint(r.Votes)})
	}

	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// =============================================================================

var client = http.Client{Timeout: 10 * time.Second}

// call sends the request to the tally service and decodes the response into
// resp. Error responses are returned with the message the service gave.
func call(method string, endpoint string, body any, resp any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequest(method, endpoint, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	r, err := client.Do(req)
	if err != nil {
		return err
	}
	defer r.Body.Close()

	if r.StatusCode >= http.StatusBadRequest {
		var er errs.Response
		if err := json.NewDecoder(r.Body).Decode(&er); err != nil {
			return fmt.Errorf("status %d", r.StatusCode)
		}
		return fmt.Errorf("status %d: %s", r.StatusCode, er.Error)
	}

	return json.NewDecoder(r.Body).Decode(resp)
}
