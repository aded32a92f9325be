// Copyright 2026 The Tracewalk Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tracewalk/atf"
)

func newManifestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "manifest <session-dir>",
		Short: "Print a session's parsed manifest and aggregate range",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := atf.OpenSessionReader(args[0])
			if err != nil {
				return err
			}
			defer session.Close()

			start, end := session.TimeRange()
			fmt.Printf("threads: %d\n", len(session.Manifest.Threads))
			fmt.Printf("open threads: %d\n", len(session.Threads))
			fmt.Printf("event_count: %d\n", session.EventCount())
			fmt.Printf("time_range: [%d, %d]\n", start, end)
			return nil
		},
	}
}

func newIndexCmd() *cobra.Command {
	var seq int64
	var showAll bool

	cmd := &cobra.Command{
		Use:   "index <thread-dir>",
		Short: "Print index events for a thread directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			thread, err := atf.OpenThreadReader(args[0])
			if err != nil {
				return err
			}
			defer thread.Close()

			if !showAll {
				ev, err := thread.Index.Get(seq)
				if err != nil {
					return err
				}
				printIndexEvent(seq, ev)
				return nil
			}

			it := thread.Index.Iter()
			for i := int64(0); it.Next(); i++ {
				printIndexEvent(i, it.Event())
			}
			return it.Err()
		},
	}

	cmd.Flags().Int64Var(&seq, "seq", 0, "sequence number to print")
	cmd.Flags().BoolVar(&showAll, "all", false, "print every event in the thread")
	return cmd
}

func newDetailCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detail <thread-dir>",
		Short: "Print detail events, forward-paired with their index event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			thread, err := atf.OpenThreadReader(args[0])
			if err != nil {
				return err
			}
			defer thread.Close()

			if thread.Detail == nil {
				fmt.Println("no detail file for this thread")
				return nil
			}

			it := thread.Detail.Iter()
			for it.Next() {
				ev := it.Event()
				fmt.Printf("seq=? index_seq=%d type=%d ts=%d payload_len=%d\n",
					ev.Header.IndexSeq, ev.Header.EventType, ev.Header.Timestamp, len(ev.Payload))
				if idx, err := thread.GetIndexFor(ev); err == nil {
					fmt.Printf("  index: ts=%d function_id=%d kind=%d depth=%d\n",
						idx.TimestampNs, idx.FunctionID, idx.EventKind, idx.CallDepth)
				}
			}
			return it.Err()
		},
	}
	return cmd
}

func newMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge <session-dir>",
		Short: "Stream the session's merged, time-ordered event iterator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := atf.OpenSessionReader(args[0])
			if err != nil {
				return err
			}
			defer session.Close()

			it := session.MergedIter()
			for it.Next() {
				ev := it.Event()
				fmt.Printf("slot=%d ts=%d kind=%d function_id=%d\n",
					it.ThreadSlot(), ev.TimestampNs, ev.EventKind, ev.FunctionID)
			}
			return it.Err()
		},
	}
	return cmd
}

func printIndexEvent(seq int64, ev atf.IndexEvent) {
	fmt.Printf("seq=%d ts=%d function_id=%d thread_id=%d kind=%d depth=%d detail_seq=%d\n",
		seq, ev.TimestampNs, ev.FunctionID, ev.ThreadID, ev.EventKind, ev.CallDepth, ev.DetailSeq)
}
