package hibp

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDownloader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(rangeResponseMiss))
	}))
	t.Cleanup(server.Close)

	fileName := filepath.Join(t.TempDir(), "download-test.txt")
	file, err := os.Create(fileName)
	if err != nil {
		t.Fatalf("Should not fail creating a file: %s", err)
	}

	downloader := NewDownloader(testClient(server.URL), file, 1)
	if err = downloader.ProcessRanges(2, true); err != nil {
		t.Errorf("Should not fail download: %s", err)
	}

	if err = file.Close(); err != nil {
		t.Fatalf("Should not fail closing file: %s", err)
	}

	data, err := os.ReadFile(fileName)
	if err != nil {
		t.Fatalf("Should not fail reading the file back: %s", err)
	}

	if len(data) == 0 {
		t.Fatalf("File should have a positive size")
	}

	// Every line is the full 40 char hash plus count, range prefix included.
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\r\n") {
		hash, _, ok := strings.Cut(line, ":")
		if !ok {
			t.Errorf("Line should be HASH:COUNT: %q", line)
			continue
		}
		if len(hash) != DigestLen {
			t.Errorf("Line hash should be %d chars: %q", DigestLen, line)
		}
		if !strings.HasPrefix(hash, "0000") {
			t.Errorf("The first two ranges should start with 0000: %q", line)
		}
	}
}

func TestNewDownloaderLeavesClientAlone(t *testing.T) {
	client := NewClient()
	file, err := os.Create(filepath.Join(t.TempDir(), "download-test.txt"))
	if err != nil {
		t.Fatalf("Should not fail creating a file: %s", err)
	}
	t.Cleanup(func() { _ = file.Close() })

	downloader := NewDownloader(client, file, 1)

	if client.http.RetryMax != 0 {
		t.Errorf("Check client should keep RetryMax 0, got %d", client.http.RetryMax)
	}
	if downloader.client == client || downloader.client.http == client.http {
		t.Errorf("Downloader should fetch on its own client")
	}
	if downloader.client.http.RetryMax != 10 {
		t.Errorf("Downloader client should retry 10 times, got %d", downloader.client.http.RetryMax)
	}
	if downloader.client.BaseURL != client.BaseURL {
		t.Errorf("Downloader should keep the endpoint: %s != %s", downloader.client.BaseURL, client.BaseURL)
	}
}

func TestGetHashRange(t *testing.T) {
	cases := []struct {
		index int
		want  string
	}{
		{0, "00000"},
		{1, "00001"},
		{16, "00010"},
		{TotalRanges - 1, "FFFFF"},
	}

	for _, tc := range cases {
		if got := getHashRange(tc.index); got != tc.want {
			t.Errorf("getHashRange(%d): %s, want %s", tc.index, got, tc.want)
		}
	}
}
