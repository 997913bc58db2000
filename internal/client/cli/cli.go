// Package cli реализует команды клиента над локальной репликой workspace.
// Команды работают без сервера: изменения попадают в очередь мутаций и
// отправляются при следующем запуске синхронизации.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/iudanet/gophsync/internal/client/iocli"
	"github.com/iudanet/gophsync/internal/client/node"
	"github.com/iudanet/gophsync/internal/client/storage"
	"github.com/iudanet/gophsync/internal/client/workspace"
	"github.com/iudanet/gophsync/internal/models"
)

// Nodes локальные операции над узлами
type Nodes interface {
	CreateNode(ctx context.Context, input node.CreateNodeInput) (*models.Node, error)
	UpdateNode(ctx context.Context, id string, attributes json.RawMessage, references []models.NodeReference) (*models.Node, error)
	DeleteNode(ctx context.Context, id string) error
	GetNode(ctx context.Context, id string) (*models.Node, error)
	AddReaction(ctx context.Context, nodeID, reaction string) (*models.NodeReaction, error)
	RemoveReaction(ctx context.Context, nodeID, reaction string) error
}

// StatusFunc читает состояние синхронизации workspace
type StatusFunc func(ctx context.Context) (*workspace.Status, error)

type Cli struct {
	io     iocli.IO
	nodes  Nodes
	status StatusFunc
}

func New(io iocli.IO, nodes Nodes, status StatusFunc) *Cli {
	return &Cli{
		io:     io,
		nodes:  nodes,
		status: status,
	}
}

// CreateOptions параметры команды node create
type CreateOptions struct {
	Type       string
	ParentID   string
	Attributes string
}

func (c *Cli) RunCreate(ctx context.Context, opts CreateOptions) error {
	attributes := opts.Attributes
	if strings.TrimSpace(attributes) == "" {
		attributes = "{}"
	}

	created, err := c.nodes.CreateNode(ctx, node.CreateNodeInput{
		Type:       models.NodeType(opts.Type),
		ParentID:   opts.ParentID,
		Attributes: json.RawMessage(attributes),
	})
	if err != nil {
		return fmt.Errorf("failed to create node: %w", err)
	}

	c.io.Printf("Node created: %s\n", created.ID)
	c.io.Println("Change is queued and will be sent on the next sync.")
	return nil
}

func (c *Cli) RunGet(ctx context.Context, id string) error {
	n, err := c.nodes.GetNode(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNodeNotFound) {
			return fmt.Errorf("node not found with ID: %s", id)
		}
		return fmt.Errorf("failed to get node: %w", err)
	}

	c.io.Printf("ID:        %s\n", n.ID)
	c.io.Printf("Type:      %s\n", n.Type)
	if n.ParentID != "" {
		c.io.Printf("Parent:    %s\n", n.ParentID)
	}
	c.io.Printf("Root:      %s\n", n.RootID)
	c.io.Printf("Attributes: %s\n", n.Attributes)
	if n.ServerRevision == 0 {
		c.io.Println("Revision:  not synchronized yet")
	} else {
		c.io.Printf("Revision:  %d\n", n.ServerRevision)
	}
	return nil
}

func (c *Cli) RunUpdate(ctx context.Context, id, attributes string) error {
	if _, err := c.nodes.UpdateNode(ctx, id, json.RawMessage(attributes), nil); err != nil {
		return fmt.Errorf("failed to update node: %w", err)
	}
	c.io.Printf("Node updated: %s\n", id)
	return nil
}

// RunDelete удаляет узел; без force спрашивает подтверждение
func (c *Cli) RunDelete(ctx context.Context, id string, force bool) error {
	if !force {
		answer, err := c.io.ReadInput(fmt.Sprintf("Delete node %s? [y/N]: ", id))
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
			c.io.Println("Cancelled.")
			return nil
		}
	}

	if err := c.nodes.DeleteNode(ctx, id); err != nil {
		return fmt.Errorf("failed to delete node: %w", err)
	}
	c.io.Printf("Node deleted: %s\n", id)
	return nil
}

func (c *Cli) RunReact(ctx context.Context, id, reaction string, remove bool) error {
	if remove {
		if err := c.nodes.RemoveReaction(ctx, id, reaction); err != nil {
			return fmt.Errorf("failed to remove reaction: %w", err)
		}
		c.io.Printf("Reaction %s removed from %s\n", reaction, id)
		return nil
	}

	if _, err := c.nodes.AddReaction(ctx, id, reaction); err != nil {
		return fmt.Errorf("failed to add reaction: %w", err)
	}
	c.io.Printf("Reaction %s added to %s\n", reaction, id)
	return nil
}

func (c *Cli) RunStatus(ctx context.Context) error {
	status, err := c.status(ctx)
	if err != nil {
		return fmt.Errorf("failed to read status: %w", err)
	}

	c.io.Println(status.String())
	if status.PendingMutations > 0 {
		c.io.Printf("%d change(s) waiting to be synchronized. Run 'gophsync run' to synchronize.\n", status.PendingMutations)
	} else {
		c.io.Println("All local changes synchronized with server")
	}
	return nil
}
