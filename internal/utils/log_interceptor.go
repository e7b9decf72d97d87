package utils

import (
	"bufio"
	"bytes"
	"io"
	"log/slog"
	"sync/atomic"
	"time"
)

// LogInterceptor implements io.Writer and prefixes every line written to the
// target with a sequence number and timestamp. It is used for the log file
// handler so that interleaved runs remain ordered.
type LogInterceptor struct {
	target         io.Writer
	sequenceNumber atomic.Uint64
	buf            bytes.Buffer
}

func NewLogInterceptor(target io.Writer) *LogInterceptor {
	return &LogInterceptor{target: target}
}

func (i *LogInterceptor) writeFormattedLine(line []byte) (int, error) {
	lineNum := i.sequenceNumber.Add(1)
	totalWritten := 0

	prefix := slog.Uint64("line", lineNum).String() + " " +
		slog.String("time", time.Now().Format(time.RFC3339)).String() + " "
	n, err := io.WriteString(i.target, prefix)
	totalWritten += n
	if err != nil {
		return totalWritten, err
	}

	n, err = i.target.Write(append(line, '\n'))
	totalWritten += n
	return totalWritten, err
}

// Write buffers the input and emits complete lines with their prefixes.
func (i *LogInterceptor) Write(p []byte) (n int, err error) {
	if _, err = i.buf.Write(p); err != nil {
		return 0, err
	}

	totalWritten := 0
	scanner := bufio.NewScanner(&i.buf)
	scanner.Split(bufio.ScanLines)
	for scanner.Scan() {
		n, err = i.writeFormattedLine(scanner.Bytes())
		totalWritten += n
		if err != nil {
			return totalWritten, err
		}
	}

	return totalWritten, nil
}

// Close flushes any trailing partial line.
func (i *LogInterceptor) Close() error {
	remaining := i.buf.Bytes()
	if len(remaining) == 0 {
		return nil
	}
	_, err := i.writeFormattedLine(remaining)
	return err
}
