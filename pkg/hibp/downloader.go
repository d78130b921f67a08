package hibp

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"github.com/rs/zerolog/log"
	"github.com/thinhdanggroup/executor"
	"golang.org/x/net/context"
	"os"
	"passguard/internal/util"
	"runtime"
	"strings"
	"sync"
	"time"
)

// TotalRanges is the full k-anonymity prefix space, 00000 to FFFFF.
const TotalRanges = 1 << 20

// Downloader mirrors the Pwned Passwords corpus to a local file, one
// SUFFIX:COUNT range at a time, prefixing every line with its range so
// the result is a complete PREFIX+SUFFIX:COUNT dump.
type Downloader struct {
	parallelism int
	stat        *status
	wm          sync.Mutex
	fileName    string
	writer      *bufio.Writer
	client      *Client
}

// NewDownloader writes ranges fetched from client's endpoint to out.
// Unlike the check path the downloader retries failed ranges, up to 10
// times each, on its own transport so client is left untouched.
func NewDownloader(client *Client, out *os.File, parallelism int) *Downloader {
	dl := &Client{
		BaseURL:   client.BaseURL,
		UserAgent: client.UserAgent,
		http:      initHttpClient(),
	}
	dl.http.RetryMax = 10

	return &Downloader{
		parallelism: parallelism,
		writer:      bufio.NewWriter(out),
		client:      dl,
		fileName:    out.Name(),
	}
}

// ProcessRanges downloads the first ranges prefixes concurrently. Pass
// TotalRanges for a full mirror. skipWait skips the safety pause before
// the download starts.
func (d *Downloader) ProcessRanges(ranges int, skipWait bool) error {
	// The full corpus needs about 40GiB; partial runs proportionally less.
	util.CheckDiskSpace(d.fileName, 40*ranges/TotalRanges)

	s := util.Stats()
	defer s()

	var threads int
	if d.parallelism > 0 {
		threads = d.parallelism
	} else {
		// About 8 times nets a sustained download of about 150 Mbit/s
		// (96 threads), so it seems like a good default to set
		threads = runtime.NumCPU() * 8
	}

	// This is a bounded thread pool. I just didn't want to implement it myself...
	downloadTasks, err := executor.New(executor.Config{
		ReqPerSeconds: 0,
		QueueSize:     2 * threads,
		NumWorkers:    threads,
	})
	if err != nil {
		return err
	}
	defer downloadTasks.Close()

	log.Info().Msgf("download Pwned Passwords SHA1 hashes in file %s with %d threads, ^C to stop the process", d.fileName, threads)
	if !skipWait {
		time.Sleep(10 * time.Second)
	}
	log.Info().Msg("starting process. This might take a while, be patient :)")
	d.stat = newStatus(ranges)
	d.stat.BeginProgress()

	for i := 0; i < ranges; i++ {
		prefix := getHashRange(i)
		if err = downloadTasks.Publish(d.processRange, prefix); err != nil {
			log.Panic().Err(err).Msgf("there is a programming error here.")
		}
	}

	downloadTasks.Wait()
	d.stat.Done()

	if f, err := os.Stat(d.fileName); err == nil {
		log.Debug().Msgf("file %s is %.2fGiB", d.fileName, float64(f.Size())/(1024*1024*1024))
	}
	return nil
}

func getHashRange(i int) string {
	buf := make([]byte, 4)
	binary.BigEndian.PutUint32(buf, uint32(i))
	// First 5 characters, k-anonymity needs the hash like this
	return strings.ToUpper(hex.EncodeToString(buf)[3:])
}

func (d *Downloader) processRange(prefix string) {
	timer := time.Now()

	data, err := d.client.rangeBody(context.Background(), prefix)
	if err != nil {
		log.Error().Err(err).Msgf("error downloading range %s", prefix)
		return
	}
	d.stat.RequestComplete(time.Since(timer).Milliseconds())

	if err = d.writeRangeToFile(prefix, data); err != nil {
		log.Fatal().Err(err).Msgf("error during file write for range %s. Stopping process", prefix)
	}
	d.stat.RangeDownloaded()
}

func (d *Downloader) writeRangeToFile(prefix string, r []byte) error {
	// Synchronize file writes, we don't want intersected or incomplete lines written to the file.
	d.wm.Lock()
	defer d.wm.Unlock()

	scanner := bufio.NewScanner(bytes.NewReader(r))
	for scanner.Scan() {
		line := fmt.Sprintf("%s%s\r\n", prefix, scanner.Text())
		if _, err := d.writer.WriteString(line); err != nil {
			return err
		}
		d.stat.HashDownloaded()
	}

	if err := d.writer.Flush(); err != nil {
		return err
	}

	return nil
}
