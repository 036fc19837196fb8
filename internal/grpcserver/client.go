package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"tutorhub/marketplace-service/internal/search"
)

// Client calls the Marketplace service as userID.
type Client struct {
	cc     grpc.ClientConnInterface
	userID string
}

// NewClient returns a Client over cc that forwards userID as x-user-id.
func NewClient(cc grpc.ClientConnInterface, userID string) *Client {
	return &Client{cc: cc, userID: userID}
}

func (c *Client) invoke(ctx context.Context, method string, req, resp any) error {
	ctx = metadata.AppendToOutgoingContext(ctx, "x-user-id", c.userID)
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, req, resp, grpc.CallContentSubtype(codecName))
}

// ConfirmHiring hires tutorID for jobID. A non-empty InvoiceError in the
// response means the hire committed without an invoice.
func (c *Client) ConfirmHiring(ctx context.Context, jobID, tutorID int64) (*ConfirmHiringResponse, error) {
	out := new(ConfirmHiringResponse)
	if err := c.invoke(ctx, "ConfirmHiring", &ConfirmHiringRequest{JobID: jobID, TutorID: tutorID}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateInvoice(ctx context.Context, jobID int64, salary int) (*CreateInvoiceResponse, error) {
	out := new(CreateInvoiceResponse)
	if err := c.invoke(ctx, "CreateInvoice", &CreateInvoiceRequest{JobID: jobID, Salary: salary}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SearchTutors(ctx context.Context, query string) (*search.TutorSearch, error) {
	out := new(search.TutorSearch)
	if err := c.invoke(ctx, "SearchTutors", &SearchRequest{Query: query}, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SearchJobs(ctx context.Context, query string) (*search.JobSearch, error) {
	out := new(search.JobSearch)
	if err := c.invoke(ctx, "SearchJobs", &SearchRequest{Query: query}, out); err != nil {
		return nil, err
	}
	return out, nil
}
