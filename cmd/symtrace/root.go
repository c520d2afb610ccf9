// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/bassosimone/symtrace"
	"github.com/bassosimone/symtrace/internal/elfsym"
	"github.com/spf13/cobra"
)

// options holds the flags of the root command.
type options struct {
	debugSymfile bool
	verbose      bool
	lookup       []string
	addrs        []string
	segments     bool
	dump         bool
	stats        bool
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "symtrace [flags] FILE...",
		Short: "Load ELF images and query their symbols",
		Long: `Load each FILE as a module, read its ELF symbol tables, and answer
symbol queries against it.

With --debug-symfile every call into the symbol reader is logged to
stderr before it runs and, for calls returning a result, after it returns.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.OutOrStdout(), cmd.ErrOrStderr(), &opts, args)
		},
	}

	cmd.Flags().BoolVar(&opts.debugSymfile, "debug-symfile", false, "log all calls to the symbol reader")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "also log install and uninstall events")
	cmd.Flags().StringSliceVar(&opts.lookup, "lookup", nil, "global symbols to look up")
	cmd.Flags().StringSliceVar(&opts.addrs, "addr", nil, "addresses to map to a source file (e.g., 0x401000)")
	cmd.Flags().BoolVar(&opts.segments, "segments", false, "print the loadable segments")
	cmd.Flags().BoolVar(&opts.dump, "dump", false, "dump all symbols")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "print symbol statistics")

	return cmd
}

func run(stdout, stderr io.Writer, opts *options, files []string) error {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	tracer := symtrace.NewTracer(symtrace.NewConfig(), logger)
	reader := elfsym.New()
	tracer.RegisterReader(reader.Ops())
	tracer.SetEnabled(opts.debugSymfile)
	if opts.verbose {
		if err := tracer.Show(stderr); err != nil {
			return err
		}
	}

	flags := symtrace.AddMainline
	if opts.verbose {
		flags |= symtrace.AddVerbose
	}

	for _, file := range files {
		m := tracer.Load(file, reader.Ops(), reader.Quick())
		err := query(stdout, tracer, m, opts, flags)
		tracer.Unload(m)
		flags &^= symtrace.AddMainline
		if err != nil {
			return err
		}
	}
	return nil
}

func query(w io.Writer, tracer *symtrace.Tracer, m *symtrace.Module, opts *options, flags symtrace.AddFlags) error {
	if err := tracer.ReadSymbols(m, flags); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: has symbols: %t\n", m.Name(), m.HasPartialSymbols())

	for _, name := range opts.lookup {
		cu := m.LookupSymbol(symtrace.BlockGlobal, name, symtrace.DomainVar)
		fmt.Fprintf(w, "%s: %s -> %s\n", m.Name(), name, cu.DisplayName())
	}

	for _, s := range opts.addrs {
		addr, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return fmt.Errorf("invalid address %q: %w", s, err)
		}
		cu := m.FindCompunitSymtabByAddress(addr)
		fmt.Fprintf(w, "%s: %#x -> %s\n", m.Name(), addr, cu.DisplayName())
	}

	if opts.segments {
		data, err := tracer.SegmentData(m)
		if err != nil {
			return err
		}
		for _, seg := range data.Segments {
			fmt.Fprintf(w, "%s: segment %#x-%#x\n", m.Name(), seg.Base, seg.Base+seg.Size)
		}
	}

	if opts.stats {
		m.PrintStats(w, opts.verbose)
	}

	if opts.dump {
		m.Dump(w)
	}
	return nil
}
