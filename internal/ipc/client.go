package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// Client handles IPC communication with the window manager
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the socket at socketPath.
func NewClient(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    5 * time.Second,
	}
}

func (c *Client) sendRequest(req *Request) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to floatwm: %w (is it running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("floatwm error: %s", resp.Error)
	}

	return &resp, nil
}

func (c *Client) command(cmd CommandType) error {
	_, err := c.sendRequest(&Request{Command: cmd})
	return err
}

func (c *Client) query(cmd CommandType, out interface{}) error {
	resp, err := c.sendRequest(&Request{Command: cmd})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", cmd, err)
	}
	return nil
}

// Reload asks the window manager to re-read its config file.
func (c *Client) Reload() error {
	return c.command(CommandReload)
}

// StopSession ends a stuck move or resize.
func (c *Client) StopSession() error {
	return c.command(CommandStopSession)
}

// Arrange re-applies the configured layout to every output.
func (c *Client) Arrange() error {
	return c.command(CommandArrange)
}

// GetStatus retrieves window manager status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.query(CommandGetStatus, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// ListWindows retrieves the managed windows, bottom to top.
func (c *Client) ListWindows() (*WindowsData, error) {
	var data WindowsData
	if err := c.query(CommandListWindows, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetOutputs retrieves output information
func (c *Client) GetOutputs() (*OutputsData, error) {
	var data OutputsData
	if err := c.query(CommandGetOutputs, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Ping checks if the window manager is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
