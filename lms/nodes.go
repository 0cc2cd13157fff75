package lms

import (
	"cmp"
	"context"
	"fmt"
	"net/http"

	"github.com/s0up4200/lmsctl/xmlwire"
)

// GetNodes lists the active nodes under contextNodeID (0 lists from the
// root) and caches each one. Principal nodes are left out when skipUsers is
// set.
func (c *Client) GetNodes(ctx context.Context, contextNodeID int, skipUsers bool) ([]*NodeInfo, error) {
	const op = "GetNodes"
	spec := SimpleQuerySpec{
		ContextNodeID: optionalID(contextNodeID),
		NodeState:     NodeStateActive,
	}

	results, err := queryList[Node](ctx, c, op, "/nodes", spec)
	if err != nil {
		return nil, err
	}

	nodes := make([]*NodeInfo, 0, len(results))
	for _, n := range results {
		if skipUsers && NodeType(n.TypeID) == NodeTypePrincipal {
			continue
		}
		info := nodeInfo(n)
		remember(c, c.nodes, NodeKey{NodeID: info.NodeID}, info)
		nodes = append(nodes, info)
	}

	c.logger.Debug().
		Int("context_node_id", contextNodeID).
		Int("count", len(nodes)).
		Msg("Retrieved nodes")
	return nodes, nil
}

// GetNode finds an active node by name and type under parentID. A zero
// parentID searches the whole directory and a zero sub matches any subtype.
// Cached nodes also match on the decorated names described on NodeKey.
func (c *Client) GetNode(ctx context.Context, parentID int, name string, typ NodeType, sub NodeSubType) (*NodeInfo, error) {
	const op = "GetNode"
	key := NodeKey{ParentID: parentID, Name: name, TypeID: typ, SubTypeID: sub}

	return resolve(ctx, c, c.nodes, key, func(ctx context.Context) (*NodeInfo, error) {
		spec := SimpleQuerySpec{
			ContextNodeID: &parentID,
			Name:          name,
			NodeState:     NodeStateActive,
			NodeSubType:   sub.String(),
			NodeType:      typ.String(),
		}
		results, err := queryList[Node](ctx, c, op, "/nodes", spec)
		if err != nil {
			return nil, err
		}
		for _, n := range results {
			if n.Name == name {
				return nodeInfo(n), nil
			}
		}
		return nil, fmt.Errorf("%s %q under %d: %w", cmp.Or(typ.String(), "node"), name, parentID, ErrNotFound)
	})
}

// GetNodeByID returns the active node with the given id.
func (c *Client) GetNodeByID(ctx context.Context, nodeID int) (*NodeInfo, error) {
	const op = "GetNodeByID"

	return resolve(ctx, c, c.nodes, NodeKey{NodeID: nodeID}, func(ctx context.Context) (*NodeInfo, error) {
		spec := SimpleQuerySpec{NodeID: &nodeID, NodeState: NodeStateActive}
		results, err := queryList[Node](ctx, c, op, "/nodes", spec)
		if err != nil {
			return nil, err
		}
		if len(results) == 0 {
			return nil, fmt.Errorf("node %d: %w", nodeID, ErrNotFound)
		}
		return nodeInfo(results[0]), nil
	})
}

// GetOrganization finds a top level organization by name.
func (c *Client) GetOrganization(ctx context.Context, name string) (*NodeInfo, error) {
	return c.GetNode(ctx, 0, name, NodeTypeOrganization, 0)
}

// GetRegion finds a region. A zero parentID searches every organization.
func (c *Client) GetRegion(ctx context.Context, parentID int, name string) (*NodeInfo, error) {
	return c.GetNode(ctx, parentID, name, NodeTypeOrganizationalUnit, NodeSubTypeRegion)
}

func (c *Client) GetSite(ctx context.Context, parentID int, name string) (*NodeInfo, error) {
	return c.GetNode(ctx, parentID, name, NodeTypeOrganizationalUnit, NodeSubTypeSite)
}

func (c *Client) GetDepartment(ctx context.Context, parentID int, name string) (*NodeInfo, error) {
	return c.GetNode(ctx, parentID, name, NodeTypeOrganizationalUnit, NodeSubTypeDepartment)
}

func (c *Client) GetTeam(ctx context.Context, parentID int, name string) (*NodeInfo, error) {
	return c.GetNode(ctx, parentID, name, NodeTypeOrganizationalUnit, NodeSubTypeTeam)
}

// GetRepository finds a content repository.
func (c *Client) GetRepository(ctx context.Context, parentID int, name string) (*NodeInfo, error) {
	return c.GetNode(ctx, parentID, name, NodeTypeRepository, 0)
}

// GetRegistry finds a training registry.
func (c *Client) GetRegistry(ctx context.Context, parentID int, name string) (*NodeInfo, error) {
	return c.GetNode(ctx, parentID, name, NodeTypeStorage, NodeSubTypeRegistry)
}

// CreateNode creates an organizational unit of subtype sub under parentID,
// whose subtype is parentSub.
func (c *Client) CreateNode(ctx context.Context, parentID int, name string, parentSub, sub NodeSubType) (*NodeInfo, error) {
	const op = "CreateNode"
	node := newNode(name, NodeTypeOrganizationalUnit, sub)
	node.ParentID = &parentID
	parentType := int(NodeTypeOrganizationalUnit)
	node.ParentTypeID = &parentType
	parentSubType := int(parentSub)
	node.ParentSubTypeID = &parentSubType

	body, err := c.dispatcher.Send(ctx, op, http.MethodPost, "/node", nil, node)
	if err != nil {
		return nil, err
	}
	if xmlwire.IsEmpty(body) {
		return nil, c.rejected(op, fmt.Sprintf("no node returned for %q", name), body)
	}

	var created Node
	if err := c.dispatcher.Decode(op, body, &created); err != nil {
		return nil, err
	}
	info := nodeInfo(created)
	if info.ParentID == 0 {
		info.ParentID = parentID
	}

	c.logger.Info().
		Str("name", info.Name).
		Int("node_id", info.NodeID).
		Stringer("subtype", sub).
		Msg("Created node")
	return info, nil
}

// CreateSite creates a site under a region.
func (c *Client) CreateSite(ctx context.Context, regionID int, name string) (*NodeInfo, error) {
	return c.CreateNode(ctx, regionID, name, NodeSubTypeRegion, NodeSubTypeSite)
}

// CreateDepartment creates a department under a site.
func (c *Client) CreateDepartment(ctx context.Context, siteID int, name string) (*NodeInfo, error) {
	return c.CreateNode(ctx, siteID, name, NodeSubTypeSite, NodeSubTypeDepartment)
}

// newNode returns an active node marked for creation.
func newNode(name string, typ NodeType, sub NodeSubType) Node {
	n := Node{
		DTOState:  DTOStateCreated,
		Name:      name,
		NodeState: NodeStateActive,
		NodeDetail: &NodeDetail{
			DTOState:  DTOStateCreated,
			NodeState: NodeStateActive,
		},
		TypeID: int(typ),
	}
	if sub != 0 {
		subType := int(sub)
		n.SubTypeID = &subType
	}
	return n
}
