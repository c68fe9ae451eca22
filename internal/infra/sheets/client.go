package sheets

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client talks to a Google-Sheets-style values API: append a row, read a
// range, overwrite a range. It knows nothing about leads.
type Client struct {
	baseURL       string
	token         string
	spreadsheetID string
	http          *http.Client
}

func NewClient(baseURL, token, spreadsheetID string) *Client {
	return &Client{
		baseURL:       baseURL,
		token:         token,
		spreadsheetID: spreadsheetID,
		http:          &http.Client{Timeout: 10 * time.Second},
	}
}

// AppendRow appends one row to the worksheet and returns the 1-based row
// number the API placed it at.
func (c *Client) AppendRow(worksheet string, row []string) (int, error) {
	endpoint := fmt.Sprintf("%s/spreadsheets/%s/values/%s:append?valueInputOption=RAW&insertDataOption=INSERT_ROWS",
		c.baseURL, c.spreadsheetID, url.PathEscape(worksheet+"!A:O"))

	var resp appendResponse
	if err := c.do("POST", endpoint, appendRequest{Values: [][]string{row}}, &resp); err != nil {
		return 0, err
	}

	rowNum, err := rowFromRange(resp.Updates.UpdatedRange)
	if err != nil {
		return 0, fmt.Errorf("sheets append: %w", err)
	}
	return rowNum, nil
}

// GetRange reads the rows of an A1 range, e.g. "Leads!A2:O2".
func (c *Client) GetRange(a1Range string) ([][]string, error) {
	endpoint := fmt.Sprintf("%s/spreadsheets/%s/values/%s",
		c.baseURL, c.spreadsheetID, url.PathEscape(a1Range))

	var resp valuesResponse
	if err := c.do("GET", endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// UpdateRange overwrites the cells of an A1 range.
func (c *Client) UpdateRange(a1Range string, rows [][]string) error {
	endpoint := fmt.Sprintf("%s/spreadsheets/%s/values/%s?valueInputOption=RAW",
		c.baseURL, c.spreadsheetID, url.PathEscape(a1Range))

	return c.do("PUT", endpoint, updateRequest{Values: rows}, nil)
}

func (c *Client) do(method, endpoint string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("sheets marshal: %w", err)
		}
		body = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sheets request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sheets API error (status %d): %s", resp.StatusCode, string(raw))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("sheets decode: %w", err)
		}
	}
	return nil
}

// rowFromRange extracts the starting row number from an updatedRange like
// "Leads!A7:O7".
func rowFromRange(updatedRange string) (int, error) {
	_, cells, ok := strings.Cut(updatedRange, "!")
	if !ok {
		return 0, fmt.Errorf("unexpected range %q", updatedRange)
	}
	start, _, _ := strings.Cut(cells, ":")
	digits := strings.TrimLeft(start, "ABCDEFGHIJKLMNOPQRSTUVWXYZ")
	row, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("unexpected range %q", updatedRange)
	}
	return row, nil
}
