// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// sortcsv is the one-off pre-processing utility: it sorts a transaction CSV
// ascending by timestamp so the importer can replay it with bounded skew.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"txnstats/internal/txkeys"
)

func main() {
	src := flag.String("in", "transactions.csv", "source CSV path")
	dst := flag.String("out", "sorted_transactions.csv", "target CSV path")
	flag.Parse()

	if err := sortCSV(*src, *dst); err != nil {
		log.Fatalf("sortcsv: %v", err)
	}
}

func sortCSV(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	reader := csv.NewReader(in)
	records, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	if len(records) == 0 {
		return fmt.Errorf("%s is empty", src)
	}

	header, rows := records[0], records[1:]
	tsCol := -1
	for i, col := range header {
		if col == "timestamp" {
			tsCol = i
			break
		}
	}
	if tsCol < 0 {
		return fmt.Errorf("%s has no timestamp column", src)
	}

	var badRow error
	sort.SliceStable(rows, func(i, j int) bool {
		ti, err := txkeys.ParseTimestamp(rows[i][tsCol])
		if err != nil && badRow == nil {
			badRow = fmt.Errorf("row %d: %w", i+2, err)
		}
		tj, err := txkeys.ParseTimestamp(rows[j][tsCol])
		if err != nil && badRow == nil {
			badRow = fmt.Errorf("row %d: %w", j+2, err)
		}
		return ti.Before(tj)
	})
	if badRow != nil {
		return badRow
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	writer := csv.NewWriter(out)
	if err := writer.Write(header); err != nil {
		return err
	}
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}
