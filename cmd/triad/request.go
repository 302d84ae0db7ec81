package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

const maxRequestBytes = 1 << 20

var errEmptyRequest = errors.New("empty request: pass -request, positional arguments or type one at the prompt")

// readRequest picks the request from -request, then positional arguments, then
// stdin. On a terminal the user is prompted for one line; otherwise all of
// stdin is read. Cancelling ctx abandons a pending read.
func readRequest(ctx context.Context, opts options, stdin io.Reader, stdout io.Writer, interactive bool) (string, error) {
	if r := strings.TrimSpace(opts.request); r != "" {
		return r, nil
	}
	if r := strings.TrimSpace(strings.Join(opts.args, " ")); r != "" {
		return r, nil
	}
	if stdin == nil {
		return "", errEmptyRequest
	}

	if interactive {
		fmt.Fprint(stdout, "Enter user request: ")
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := readStdin(stdin, interactive)
		done <- result{text, err}
	}()

	var text string
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("read request: %w", ctx.Err())
	case r := <-done:
		if r.err != nil {
			return "", fmt.Errorf("read request: %w", r.err)
		}
		text = r.text
	}

	if text = strings.TrimSpace(text); text == "" {
		return "", errEmptyRequest
	}
	return text, nil
}

func readStdin(stdin io.Reader, interactive bool) (string, error) {
	if interactive {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		return line, nil
	}
	data, err := io.ReadAll(io.LimitReader(stdin, maxRequestBytes))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
