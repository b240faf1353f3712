package server

import (
	goerrors "errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"danmaku/internal/dao"
	"danmaku/internal/danmaku"
	"danmaku/internal/metrics"
	"danmaku/internal/utils"
)

// exportPath confines filename to the export directory.
func (s *Server) exportPath(filename string) string {
	return filepath.Join(s.conf.ExportDir, filepath.Base(filename))
}

// handleExportExcel 导出 Excel
// @Summary 导出弹幕到 Excel
// @Description 导出到服务端导出目录，启用 S3 时同时上传到对象存储
// @Tags 导入导出
// @Produce json
// @Param filename query string true "文件名(.xlsx)"
// @Success 200 {object} dao.ExportExcelResponse "导出成功"
// @Failure 400 {object} dao.Response "请求参数错误"
// @Failure 403 {object} dao.Response "数据库为空"
// @Failure 500 {object} dao.Response "内部服务器错误"
// @Router /api/export_excel [get]
func (s *Server) handleExportExcel(c *gin.Context) {
	var req dao.ExcelRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		s.writeBindError(c, err)
		return
	}
	if err := os.MkdirAll(s.conf.ExportDir, 0o755); err != nil {
		s.writeError(c, http.StatusInternalServerError, fmt.Errorf("create export dir: %w", err))
		return
	}

	localPath := s.exportPath(req.Filename)
	s.mu.RLock()
	err := s.store.ExportExcel(localPath)
	s.mu.RUnlock()
	if err != nil {
		metrics.ExportsTotal.WithLabelValues("failed").Inc()
		s.writeDomainError(c, err, 0, 0)
		return
	}
	metrics.ExportsTotal.WithLabelValues("ok").Inc()

	resp := dao.ExportExcelResponse{
		Response: dao.NewResponse(dao.CodeSuccess),
		Path:     localPath,
	}
	if s.minioCli != nil {
		object := path.Join("exports", filepath.Base(localPath))
		if err := utils.UploadFileToMinio(c.Request.Context(), s.minioCli, s.conf.S3.Bucket, localPath, object); err != nil {
			s.writeError(c, http.StatusInternalServerError, err)
			return
		}
		resp.Object = s.conf.S3.UrlPrefix() + "/" + object
	}
	c.JSON(http.StatusOK, resp)
}

// handleImportExcel 导入 Excel
// @Summary 从导出文件恢复数据库
// @Description 读取导出目录中的 Excel 文件并替换当前数据库
// @Tags 导入导出
// @Produce json
// @Param filename query string true "文件名(.xlsx)"
// @Success 200 {object} dao.Response "导入成功"
// @Failure 400 {object} dao.Response "请求参数错误或文件不存在"
// @Failure 500 {object} dao.Response "内部服务器错误"
// @Router /api/import_excel [get]
func (s *Server) handleImportExcel(c *gin.Context) {
	var req dao.ExcelRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		s.writeBindError(c, err)
		return
	}

	fresh := danmaku.NewStore()
	if err := fresh.ImportExcel(s.exportPath(req.Filename)); err != nil {
		if goerrors.Is(err, danmaku.ErrInvalidArgument) {
			s.writeError(c, http.StatusBadRequest, err)
			return
		}
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}

	s.mu.Lock()
	s.store = fresh
	s.updateStoreGauge()
	s.mu.Unlock()

	s.writeCode(c, dao.CodeSuccess)
}
