package converter

import (
	"mediconnect/internal/delivery/dto"
	"mediconnect/internal/domain/entity"
)

func DocumentToResponse(doc *entity.MedicalDocument) *dto.DocumentResponse {
	return &dto.DocumentResponse{
		ID:        doc.ID,
		PatientID: doc.PatientID,
		DoctorID:  doc.DoctorID,
		Title:     doc.Title,
		FilePath:  doc.FilePath,
		FileType:  doc.FileType,
		FileSize:  doc.FileSize,
		CreatedAt: doc.CreatedAt,
	}
}

func DocumentsToResponses(docs []entity.MedicalDocument) []dto.DocumentResponse {
	responses := make([]dto.DocumentResponse, len(docs))
	for i := range docs {
		responses[i] = *DocumentToResponse(&docs[i])
	}
	return responses
}
