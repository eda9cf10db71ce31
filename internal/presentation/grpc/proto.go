package grpc

// proto.go defines the gRPC server interface derived from
// project2052/calculation/v1/calculation.proto. This file serves as a
// stand-in for buf-generated code. Once `buf generate` is run, replace this
// file with the import from github.com/project2052/api/gen/go/calculation/v1.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// CalculationServiceServer is the server API for CalculationService.
type CalculationServiceServer interface {
	RunCalculation(context.Context, *RunCalculationRequest) (*RunCalculationResponse, error)
	GetCacheStats(context.Context, *GetCacheStatsRequest) (*GetCacheStatsResponse, error)
	InvalidateProposal(context.Context, *InvalidateProposalRequest) (*InvalidateProposalResponse, error)
	GetLatestSnapshot(context.Context, *GetLatestSnapshotRequest) (*GetLatestSnapshotResponse, error)
	mustEmbedUnimplementedCalculationServiceServer()
}

// UnimplementedCalculationServiceServer provides forward-compatible default implementations.
type UnimplementedCalculationServiceServer struct{}

func (UnimplementedCalculationServiceServer) RunCalculation(context.Context, *RunCalculationRequest) (*RunCalculationResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RunCalculation not implemented")
}
func (UnimplementedCalculationServiceServer) GetCacheStats(context.Context, *GetCacheStatsRequest) (*GetCacheStatsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetCacheStats not implemented")
}
func (UnimplementedCalculationServiceServer) InvalidateProposal(context.Context, *InvalidateProposalRequest) (*InvalidateProposalResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method InvalidateProposal not implemented")
}
func (UnimplementedCalculationServiceServer) GetLatestSnapshot(context.Context, *GetLatestSnapshotRequest) (*GetLatestSnapshotResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetLatestSnapshot not implemented")
}
func (UnimplementedCalculationServiceServer) mustEmbedUnimplementedCalculationServiceServer() {}

// RegisterCalculationServiceServer registers the CalculationServiceServer with the gRPC server.
func RegisterCalculationServiceServer(s *grpclib.Server, srv CalculationServiceServer) {
	s.RegisterService(&_CalculationService_serviceDesc, srv)
}

var _CalculationService_serviceDesc = grpclib.ServiceDesc{
	ServiceName: "project2052.calculation.v1.CalculationService",
	HandlerType: (*CalculationServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "RunCalculation", Handler: _CalculationService_RunCalculation_Handler},
		{MethodName: "GetCacheStats", Handler: _CalculationService_GetCacheStats_Handler},
		{MethodName: "InvalidateProposal", Handler: _CalculationService_InvalidateProposal_Handler},
		{MethodName: "GetLatestSnapshot", Handler: _CalculationService_GetLatestSnapshot_Handler},
	},
	Streams: []grpclib.StreamDesc{},
}

func _CalculationService_RunCalculation_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, _ grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(RunCalculationRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(CalculationServiceServer).RunCalculation(ctx, req)
}

func _CalculationService_GetCacheStats_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, _ grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(GetCacheStatsRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(CalculationServiceServer).GetCacheStats(ctx, req)
}

func _CalculationService_InvalidateProposal_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, _ grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(InvalidateProposalRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(CalculationServiceServer).InvalidateProposal(ctx, req)
}

func _CalculationService_GetLatestSnapshot_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, _ grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(GetLatestSnapshotRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	return srv.(CalculationServiceServer).GetLatestSnapshot(ctx, req)
}
