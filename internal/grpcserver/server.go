// Package grpcserver implements the Marketplace gRPC service.
//
// It delegates all business logic to the hiring, billing and search services
// and handles only the gRPC transport concerns: metadata extraction, error
// mapping and message types. Messages are JSON encoded (see codec.go).
package grpcserver

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"tutorhub/marketplace-service/internal/apperr"
	"tutorhub/marketplace-service/internal/hiring"
	"tutorhub/marketplace-service/internal/model"
	"tutorhub/marketplace-service/internal/search"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "tutorhub.marketplace.v1.Marketplace"

// ─── Collaborators ───────────────────────────────────────────────────────────

// Hiring is the part of hiring.Service exposed over gRPC.
type Hiring interface {
	Job(ctx context.Context, jobID int64) (model.JobPosting, error)
	ConfirmHiring(ctx context.Context, jobID, tutorID int64) (*hiring.HireOutcome, error)
}

// Billing is the part of billing.Service exposed over gRPC.
type Billing interface {
	CreateInvoice(ctx context.Context, jobID int64, salary int) (model.CommissionInvoice, bool, error)
}

// Search is the part of search.Service exposed over gRPC.
type Search interface {
	SearchTutors(ctx context.Context, query string) (search.TutorSearch, error)
	SearchJobs(ctx context.Context, query string) (search.JobSearch, error)
}

// ─── Messages ────────────────────────────────────────────────────────────────

type ConfirmHiringRequest struct {
	JobID   int64 `json:"jobId"`
	TutorID int64 `json:"tutorId"`
}

// ConfirmHiringResponse is the committed hire. InvoiceError is set when the
// hire committed but its commission invoice could not be created.
type ConfirmHiringResponse struct {
	*hiring.HireOutcome
	InvoiceError string `json:"invoiceError,omitempty"`
}

type CreateInvoiceRequest struct {
	JobID  int64 `json:"jobId"`
	Salary int   `json:"salary"`
}

type CreateInvoiceResponse struct {
	Invoice model.CommissionInvoice `json:"invoice"`
	Created bool                    `json:"created"`
}

type SearchRequest struct {
	Query string `json:"query"`
}

// ─── Server ──────────────────────────────────────────────────────────────────

// Server implements the Marketplace service.
type Server struct {
	hiring  Hiring
	billing Billing
	search  Search
	log     *zap.Logger
}

// NewServer constructs a Server backed by the given services.
func NewServer(h Hiring, b Billing, s Search, log *zap.Logger) *Server {
	return &Server{hiring: h, billing: b, search: s, log: log.Named("grpc")}
}

// Register mounts the Marketplace service and the standard health service
// on gs. The returned health server reports SERVING for both.
func Register(gs *grpc.Server, srv *Server) *health.Server {
	gs.RegisterService(&serviceDesc, srv)
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gs, hs)
	return hs
}

// ─── RPC implementations ─────────────────────────────────────────────────────

// ConfirmHiring fills a job owned by the caller. A hire that commits but
// fails to invoice returns OK with the outcome and InvoiceError set.
func (s *Server) ConfirmHiring(ctx context.Context, req *ConfirmHiringRequest) (*ConfirmHiringResponse, error) {
	userID, err := userIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	job, err := s.hiring.Job(ctx, req.JobID)
	if err != nil {
		return nil, toGRPCError(err)
	}
	if job.GuardianID != userID {
		return nil, status.Errorf(codes.PermissionDenied, "job %d does not belong to the caller", req.JobID)
	}

	out, err := s.hiring.ConfirmHiring(ctx, req.JobID, req.TutorID)
	if err != nil && out == nil {
		return nil, toGRPCError(err)
	}
	resp := &ConfirmHiringResponse{HireOutcome: out}
	if err != nil {
		s.log.Error("hire committed with errors", zap.Int64("jobId", req.JobID), zap.Error(err))
		resp.InvoiceError = apperr.UserMessage(err)
	}
	return resp, nil
}

// CreateInvoice creates (or returns) the commission invoice of a filled job.
func (s *Server) CreateInvoice(ctx context.Context, req *CreateInvoiceRequest) (*CreateInvoiceResponse, error) {
	if _, err := userIDFromCtx(ctx); err != nil {
		return nil, err
	}
	inv, created, err := s.billing.CreateInvoice(ctx, req.JobID, req.Salary)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return &CreateInvoiceResponse{Invoice: inv, Created: created}, nil
}

// SearchTutors runs a natural-language tutor search.
func (s *Server) SearchTutors(ctx context.Context, req *SearchRequest) (*search.TutorSearch, error) {
	if _, err := userIDFromCtx(ctx); err != nil {
		return nil, err
	}
	res, err := s.search.SearchTutors(ctx, req.Query)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return &res, nil
}

// SearchJobs runs a natural-language job search.
func (s *Server) SearchJobs(ctx context.Context, req *SearchRequest) (*search.JobSearch, error) {
	if _, err := userIDFromCtx(ctx); err != nil {
		return nil, err
	}
	res, err := s.search.SearchJobs(ctx, req.Query)
	if err != nil {
		return nil, toGRPCError(err)
	}
	return &res, nil
}

// ─── Service descriptor ──────────────────────────────────────────────────────

// marketplaceServer is the handler type checked by RegisterService.
type marketplaceServer interface {
	ConfirmHiring(context.Context, *ConfirmHiringRequest) (*ConfirmHiringResponse, error)
	CreateInvoice(context.Context, *CreateInvoiceRequest) (*CreateInvoiceResponse, error)
	SearchTutors(context.Context, *SearchRequest) (*search.TutorSearch, error)
	SearchJobs(context.Context, *SearchRequest) (*search.JobSearch, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*marketplaceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ConfirmHiring", Handler: unary(func(s marketplaceServer, ctx context.Context, req *ConfirmHiringRequest) (any, error) {
			return s.ConfirmHiring(ctx, req)
		})},
		{MethodName: "CreateInvoice", Handler: unary(func(s marketplaceServer, ctx context.Context, req *CreateInvoiceRequest) (any, error) {
			return s.CreateInvoice(ctx, req)
		})},
		{MethodName: "SearchTutors", Handler: unary(func(s marketplaceServer, ctx context.Context, req *SearchRequest) (any, error) {
			return s.SearchTutors(ctx, req)
		})},
		{MethodName: "SearchJobs", Handler: unary(func(s marketplaceServer, ctx context.Context, req *SearchRequest) (any, error) {
			return s.SearchJobs(ctx, req)
		})},
	},
	Metadata: "tutorhub/marketplace/v1",
}

// unary adapts a typed method to grpc.MethodDesc's handler signature,
// decoding the request and honouring any unary interceptor.
func unary[Req any](call func(marketplaceServer, context.Context, *Req) (any, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := new(Req)
		if err := dec(req); err != nil {
			return nil, err
		}
		s := srv.(marketplaceServer)
		if interceptor == nil {
			return call(s, ctx, req)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(ctx)}
		return interceptor(ctx, req, info, func(ctx context.Context, req any) (any, error) {
			return call(s, ctx, req.(*Req))
		})
	}
}

func fullMethod(ctx context.Context) string {
	m, _ := grpc.Method(ctx)
	return m
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

// userIDFromCtx extracts the x-user-id value forwarded by the Gateway
// via gRPC metadata.
func userIDFromCtx(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing metadata")
	}
	vals := md.Get("x-user-id")
	if len(vals) == 0 || strings.TrimSpace(vals[0]) == "" {
		return "", status.Error(codes.Unauthenticated, "missing x-user-id metadata")
	}
	return strings.TrimSpace(vals[0]), nil
}

// toGRPCError maps domain errors to gRPC status errors.
func toGRPCError(err error) error {
	msg := apperr.UserMessage(err)
	switch {
	case apperr.Is(err, apperr.ErrNotFound):
		return status.Error(codes.NotFound, msg)
	case apperr.Is(err, apperr.ErrValidation):
		return status.Error(codes.InvalidArgument, msg)
	case apperr.Is(err, apperr.ErrInvalidOperation):
		return status.Error(codes.FailedPrecondition, msg)
	case apperr.Is(err, apperr.ErrConflict):
		return status.Error(codes.Aborted, msg)
	case apperr.Is(err, apperr.ErrExternalService):
		return status.Error(codes.Unavailable, msg)
	default:
		return status.Error(codes.Internal, "internal server error")
	}
}
