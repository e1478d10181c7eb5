// Package aggregate builds pivot tables, grouped reductions, and the
// heatmap view set from the enriched flight table.
//
// Pivot axes are canonicalized so payloads are deterministic: weekday axes
// reorder Monday through Sunday keeping only days present in the data,
// numeric axes sort numerically, and other axes sort lexically. Cells with
// no contributing rows are zero-filled, never null.
//
// Views whose prerequisite columns are absent from the whole batch are
// omitted from the ViewSet rather than rendered empty; clients discover
// what is available from AvailableViews.
package aggregate
