package graphql

import (
	"encoding/json"
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// Query names, used in errors, logs and metrics.
const (
	QueryCommunity = "getCommunity"
	QueryNode      = "getNode"
)

const communityDocument = `{
  getCommunity(id: %s) {
    details {
      name
      pubId
    }
    member_count
    member_list
  }
}`

const nodeDocument = `{
  getNode(pubkey: %s) {
    graph_info {
      node {
        alias
        color
      }
      channels {
        total_capacity
        list {
          block_age
          short_channel_id
          capacity
          node1_pub
          node2_pub
        }
      }
    }
  }
}`

// CommunityQuery returns the community lookup document for id.
func CommunityQuery(id string) (string, error) {
	return buildQuery(communityDocument, id)
}

// NodeQuery returns the node lookup document for pubkey.
func NodeQuery(pubkey string) (string, error) {
	return buildQuery(nodeDocument, pubkey)
}

// buildQuery embeds arg as a GraphQL string literal and parses the result,
// so an identifier can never change the shape of the document.
func buildQuery(format, arg string) (string, error) {
	// A JSON string is a valid GraphQL string literal.
	lit, err := json.Marshal(arg)
	if err != nil {
		return "", err
	}
	q := fmt.Sprintf(format, lit)

	doc, perr := parser.ParseQuery(&ast.Source{Input: q})
	if perr != nil {
		return "", fmt.Errorf("invalid query document: %w", perr)
	}
	if len(doc.Operations) != 1 || len(doc.Operations[0].SelectionSet) != 1 {
		return "", fmt.Errorf("invalid query document: expected a single root field")
	}
	return q, nil
}
