package plan

// The following documentation is used to describe how an MF query is mapped
// into a plan.
//
// After the plan been generated, it will contain 5 phases, which will be
// executed sequentially by the executor (or emitted as AWK by the cg package)
//
// 1) GroupBy
//    The grouping attributes V. A group entry is identified by the tuple of
//    its V values, compared with the strnum rule (5 and "5.0" are the same
//    group).
//
// 2) TableScan
//    n+1 full passes over the row source. The base scan (index 0) has no
//    filter, it creates the group entries and updates the base accumulators.
//    Scan i (1..n) evaluates its filter against the row and the row's own
//    group entry, and updates only the accumulators classified under i.
//    Conditional scans never create entries:
//
//    for row in source {                   // scan 0
//      g = lookup_or_insert(row[V])
//      update(g, scan_0_acc, row)
//    }
//    for i in 1..n {
//      for row in source {                 // scan i
//        g = lookup(row[V]); if (!g) continue
//        if (!filter_i(row, g)) continue
//        update(g, scan_i_acc, row)
//      }
//    }
//
// 3) Having
//    A simple filter over each finalized group entry, true when absent.
//
// 4) Sort
//    Stable lexicographic sort over the V tuple.
//
// 5) Output
//    Projection of V followed by S, duplicates collapsed. avg fields are
//    derived from their sum/count pair, 0 when the count is 0.
