// Package fetch downloads source snapshots over HTTP with retries.
package fetch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/featwatch/featwatch/internal/utils"
	retryablehttp "github.com/hashicorp/go-retryablehttp"
)

// Download fetches rawURL and writes it to dest atomically (temp file plus
// rename), so a failed download never clobbers an existing snapshot.
func Download(ctx context.Context, rawURL, dest string) error {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 2 * time.Second
	client.Logger = nil

	req, err := retryablehttp.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "featwatch/1.0")
	req.Header.Set("Accept", "application/json")

	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != 200 {
		return fmt.Errorf("fetching %s failed with status %d", rawURL, res.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, res.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return err
	}
	utils.Log.Debugf("downloaded %s (%d bytes) to %s", rawURL, n, dest)
	return nil
}
