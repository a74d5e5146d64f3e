// Package fetcher retrieves a community and the channels between its
// members.
//
// CommunityFetcher issues the single community lookup. MemberChannelFetcher
// issues one node lookup per member and keeps only in-community channels:
// channels whose two endpoints are both members. Node info and capacities
// are returned index-aligned with the member list, whatever the
// concurrency used to fetch them.
package fetcher
