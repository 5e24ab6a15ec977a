// Package permission expands a user's resolved tenant membership into an
// effective set of permission codes and derived categories.
//
// Codes are fine-grained capability identifiers following the
// <ACTION>_<SCOPE> convention; categories are the coarse groupings used to
// gate feature visibility. A grant's categories come from two places: the
// catalog's declared category for each code, and the code's own leading
// segment when it ends in _VIEW or _MANAGE. The second rule lets codes
// imply visibility even when catalog metadata is incomplete.
//
// Every authenticated user always holds at least the baseline pair
// (VIEW_GENERAL_CATEGORY, GENERAL): it is the result whenever no
// membership, no role, or no codes can be resolved, and the safety net
// when aggregation comes out empty.
//
// # Usage
//
//	agg, err := permission.NewAggregator(ctx, catalogSource, roleStore)
//	if err != nil {
//		return err
//	}
//
//	grant, err := agg.EffectivePermissions(ctx, user, tenantID)
//	if err != nil {
//		return err
//	}
//	if grant.HasCategory("STOCK") {
//		// show the stock section
//	}
//
// The aggregation is pure given stored state: identical inputs always
// produce identical sets.
package permission
