// Package listlogs lists audit logs.
//
// actionType and operator are store filters, keyword and the [fromDate, toDate] date window are
// applied to the page the store returns.
package listlogs
