// Package reconcile compares brokerage account holdings exported from a
// personal-finance application against live holdings fetched from the
// brokerage API, and reports ticker-level discrepancies.
//
// The core functionalities include:
//   - Position Normalization: converting raw position records from either
//     source (ledger export rows, brokerage stock and crypto records) into a
//     canonical table keyed by ticker.
//   - Reconciliation: computing the symmetric difference of tickers between
//     the two tables, and per-ticker equity deltas for tickers held on both
//     sides.
//   - Order Enrichment: normalizing per-order transaction history (one record
//     per execution, fees attributed to the first execution) for tickers
//     flagged as discrepant.
//   - Exports: CSV, QIF and XLSX snapshots of positions and orders suitable
//     for re-import into the personal-finance application.
//
// This package serves as the foundational logic for the `pcr` command-line
// tool. It holds no persistent state: every run rebuilds its view from the
// raw inputs it is given.
package reconcile
