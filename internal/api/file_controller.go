package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/propflow/propertyflow/internal/auth"
	"github.com/propflow/propertyflow/internal/repository"
	"github.com/propflow/propertyflow/internal/service"
	"github.com/propflow/propertyflow/internal/storage"
	"github.com/propflow/propertyflow/internal/utils"
)

// FileController 产权文件控制器
type FileController struct {
	fileService service.FileService
	blobs       storage.BlobStore
}

// NewFileController 创建产权文件控制器
func NewFileController(fileService service.FileService, blobs storage.BlobStore) *FileController {
	return &FileController{
		fileService: fileService,
		blobs:       blobs,
	}
}

// identity 获取已认证身份,缺失时返回 401
func identity(ctx *gin.Context) (auth.Identity, bool) {
	id, ok := auth.GetIdentity(ctx)
	if !ok {
		Error(ctx, http.StatusUnauthorized, "authentication required", "")
	}
	return id, ok
}

// fileID 校验路径中的文件 ID 并返回错误响应(如果无效)
func fileID(ctx *gin.Context) (string, bool) {
	id := ctx.Param("id")
	if err := utils.ValidateResourceID(id); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid file ID", err.Error())
		return "", false
	}
	return id, true
}

// Create 创建产权文件
func (c *FileController) Create(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	var req service.CreateFileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	file, warning, err := c.fileService.Create(id.Actor(), &req, clientMeta(ctx))
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	if warning != "" {
		SuccessWithWarning(ctx, file, warning)
		return
	}
	Created(ctx, file)
}

// List 查询产权文件列表
func (c *FileController) List(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	filter := &repository.FileFilter{
		Page:     parseIntQuery(ctx, "page", 1),
		PageSize: parseIntQuery(ctx, "page_size", 20),
	}
	if status := ctx.Query("status"); status != "" {
		filter.Status = &status
	}
	if bankID := ctx.Query("bank_id"); bankID != "" {
		filter.BankID = &bankID
	}
	if search := ctx.Query("search"); search != "" {
		filter.Search = &search
	}

	files, total, err := c.fileService.List(id.Actor(), filter)
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Paginated(ctx, files, NewPagination(filter.Page, filter.PageSize, total))
}

// Get 查询产权文件详情
func (c *FileController) Get(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	fid, ok := fileID(ctx)
	if !ok {
		return
	}

	detail, err := c.fileService.Get(fid, id.Actor())
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Success(ctx, detail)
}

// SubmitValidation 提交实地勘验证据
func (c *FileController) SubmitValidation(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	fid, ok := fileID(ctx)
	if !ok {
		return
	}

	var req service.SubmitValidationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	c.respondTransition(ctx)(c.fileService.SubmitValidation(fid, id.Actor(), &req, clientMeta(ctx)))
}

// SubmitPropertyData 提交物业录入数据
func (c *FileController) SubmitPropertyData(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	fid, ok := fileID(ctx)
	if !ok {
		return
	}

	var req service.SubmitPropertyDataRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	c.respondTransition(ctx)(c.fileService.SubmitPropertyData(fid, id.Actor(), &req, clientMeta(ctx)))
}

// verifyRequest 审核请求体
type verifyRequest struct {
	Notes string `json:"notes"`
}

// Approve 审核通过
func (c *FileController) Approve(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	fid, ok := fileID(ctx)
	if !ok {
		return
	}

	var req verifyRequest
	_ = ctx.ShouldBindJSON(&req)

	c.respondTransition(ctx)(c.fileService.Approve(fid, id.Actor(), req.Notes, clientMeta(ctx)))
}

// Reject 审核拒绝
func (c *FileController) Reject(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	fid, ok := fileID(ctx)
	if !ok {
		return
	}

	var req verifyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	c.respondTransition(ctx)(c.fileService.Reject(fid, id.Actor(), req.Notes, clientMeta(ctx)))
}

// MarkPrinted 标记打印完成
func (c *FileController) MarkPrinted(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	fid, ok := fileID(ctx)
	if !ok {
		return
	}

	c.respondTransition(ctx)(c.fileService.MarkPrinted(fid, id.Actor(), clientMeta(ctx)))
}

// holdRequest 挂起/取消请求体
type holdRequest struct {
	Reason string `json:"reason"`
}

// Hold 挂起文件
func (c *FileController) Hold(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	fid, ok := fileID(ctx)
	if !ok {
		return
	}

	var req holdRequest
	_ = ctx.ShouldBindJSON(&req)

	c.respondTransition(ctx)(c.fileService.Hold(fid, id.Actor(), req.Reason, clientMeta(ctx)))
}

// Resume 恢复挂起的文件
func (c *FileController) Resume(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	fid, ok := fileID(ctx)
	if !ok {
		return
	}

	c.respondTransition(ctx)(c.fileService.Resume(fid, id.Actor(), clientMeta(ctx)))
}

// Cancel 取消文件
func (c *FileController) Cancel(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	fid, ok := fileID(ctx)
	if !ok {
		return
	}

	var req holdRequest
	_ = ctx.ShouldBindJSON(&req)

	c.respondTransition(ctx)(c.fileService.Cancel(fid, id.Actor(), req.Reason, clientMeta(ctx)))
}

// UploadDocument 上传文档并登记到文件
// multipart 表单: file 为内容,document_type 为分类
func (c *FileController) UploadDocument(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	fid, ok := fileID(ctx)
	if !ok {
		return
	}

	if c.blobs == nil {
		Error(ctx, http.StatusServiceUnavailable, "object storage is not configured", "")
		return
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		Error(ctx, http.StatusBadRequest, "missing file", err.Error())
		return
	}
	if err := storage.ValidateUpload(fileHeader.Filename, fileHeader.Size); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid upload", err.Error())
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		Error(ctx, http.StatusBadRequest, "unreadable upload", err.Error())
		return
	}
	defer src.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	fileURL, err := c.blobs.Put(ctx.Request.Context(), fileHeader.Filename, src, fileHeader.Size, contentType)
	if err != nil {
		Error(ctx, http.StatusServiceUnavailable, "failed to store upload", err.Error())
		return
	}

	doc, err := c.fileService.AttachDocument(fid, id.Actor(), &service.DocumentInput{
		Name:         fileHeader.Filename,
		DocumentType: ctx.PostForm("document_type"),
		FileURL:      fileURL,
		FileSize:     fileHeader.Size,
		MimeType:     contentType,
	}, clientMeta(ctx))
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	Created(ctx, doc)
}

// DownloadDocument 为已登记的文档签发临时下载链接
func (c *FileController) DownloadDocument(ctx *gin.Context) {
	id, ok := identity(ctx)
	if !ok {
		return
	}

	fid, ok := fileID(ctx)
	if !ok {
		return
	}
	docID := ctx.Param("doc_id")
	if err := utils.ValidateResourceID(docID); err != nil {
		Error(ctx, http.StatusBadRequest, "invalid document ID", err.Error())
		return
	}

	if c.blobs == nil {
		Error(ctx, http.StatusServiceUnavailable, "object storage is not configured", "")
		return
	}

	detail, err := c.fileService.Get(fid, id.Actor())
	if err != nil {
		HandleServiceError(ctx, err)
		return
	}

	for _, doc := range detail.Documents {
		if doc.ID != docID {
			continue
		}
		url, err := c.blobs.PresignGet(ctx.Request.Context(), doc.FileURL, 15*time.Minute)
		if err != nil {
			Error(ctx, http.StatusServiceUnavailable, "failed to sign download link", err.Error())
			return
		}
		Success(ctx, gin.H{"url": url, "expires_in": int((15 * time.Minute).Seconds())})
		return
	}
	Error(ctx, http.StatusNotFound, "document not found", "")
}

// respondTransition 统一返回转换结果
func (c *FileController) respondTransition(ctx *gin.Context) func(*service.TransitionOutcome, error) {
	return func(outcome *service.TransitionOutcome, err error) {
		if err != nil {
			HandleServiceError(ctx, err)
			return
		}
		if outcome.Warning != "" {
			SuccessWithWarning(ctx, outcome, outcome.Warning)
			return
		}
		Success(ctx, outcome)
	}
}

// parseIntQuery 解析整数查询参数
func parseIntQuery(ctx *gin.Context, key string, fallback int) int {
	raw := ctx.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
