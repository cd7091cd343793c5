/*
Package changelogify builds versioned changelog entries from site activity.

# Overview

A run takes a date range, pulls activity records from every enabled and
available source, orders them most recent first, buckets their messages
into the five changelog sections and stores the result as a draft release.

	activity stores -> source.Aggregator -> section.Categorizer -> release.Assembler -> release.Store

# Basic Usage

Wire a registry of sources and a release store into a Pipeline:

	h, err := source.Open("sqlite", "site.db", source.DefaultPrefix)
	if err != nil {
	    log.Fatal(err)
	}
	store, err := release.NewSQLiteStore("releases.db")
	if err != nil {
	    log.Fatal(err)
	}

	p := changelogify.New(source.NewDefaultRegistry(h), store, config.DefaultSettings(),
	    changelogify.WithLogger(slog.Default()),
	)

	id, err := p.Generate(ctx, "1.2.4", from, to)

Only a storage failure makes a run fail. A source that errors, or whose
table is missing, contributes nothing and the run carries on.

# Date Ranges

GenerateForRange derives the window from a range type:

	id, err := p.GenerateForRange(ctx, changelogify.GenerateRequest{
	    RangeType: config.RangeLast7Days,
	})

An empty version asks SuggestVersion for the next patch release.

# Scheduling

RunScheduled performs one unattended run with the configured range type.
The schedule package calls it on a daily or weekly ticker.

# Observability

Loggers, metrics recorders and span managers are opt-in:

	p := changelogify.New(registry, store, settings,
	    changelogify.WithLogger(logger),
	    changelogify.WithMetrics(observability.NewMetricsRecorder()),
	    changelogify.WithSpanManager(observability.NewSpanManager()),
	)

Without them the pipeline runs silently with no-op implementations.
*/
package changelogify
