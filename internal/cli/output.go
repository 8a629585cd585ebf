package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// Output — форматирование вывода CLI.
//
// Данные (таблицы, JSON) идут в stdout, сообщения оператору — в stderr:
// вывод можно передавать по конвейеру, не засоряя его диагностикой.
type Output struct {
	jsonMode bool
	data     io.Writer
	messages io.Writer
}

// NewOutput создаёт Output. В json-режиме данные печатаются как JSON
// вместо таблиц.
func NewOutput(jsonMode bool) *Output {
	return &Output{
		jsonMode: jsonMode,
		data:     os.Stdout,
		messages: os.Stderr,
	}
}

// Print выводит данные в активном режиме: таблицей или как JSON.
func (o *Output) Print(headers []string, rows [][]string, jsonData any) {
	if o.jsonMode {
		o.JSON(jsonData)
	} else {
		o.Table(headers, rows)
	}
}

// Table печатает выровненную таблицу с заголовком и разделителем.
func (o *Output) Table(headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(o.data, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	underline := make([]string, len(headers))
	for i, h := range headers {
		underline[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(underline, "\t"))

	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	tw.Flush()
}

// JSON печатает значение как JSON с отступами.
func (o *Output) JSON(v any) {
	enc := json.NewEncoder(o.data)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

// Success печатает сообщение оператору в stderr.
func (o *Output) Success(msg string) {
	fmt.Fprintln(o.messages, msg)
}

// Error печатает сообщение об ошибке в stderr.
func (o *Output) Error(msg string) {
	fmt.Fprintln(o.messages, "Error: "+msg)
}
