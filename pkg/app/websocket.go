package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/haierkeys/knowledge-graph-service/global"
	"github.com/haierkeys/knowledge-graph-service/pkg/code"
	"golang.org/x/sync/singleflight"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/lxzan/gws"
	"go.uber.org/zap"
)

type LogType string

const (
	WebSocketServerPingInterval         = 25
	WebSocketServerPingWait             = 40
	LogInfo                     LogType = "info"
	LogError                    LogType = "error"
	LogWarn                     LogType = "warn"
)

func log(t LogType, msg string, fields ...zap.Field) {

	if t == "error" {
		global.Logger.Error(msg, fields...)
	} else if t == "warn" {
		global.Logger.Warn(msg, fields...)
	} else if t == "info" {
		global.Logger.Info(msg, fields...)

	}
}

// OwnerSession 已注册连接绑定的所有者信息
type OwnerSession struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// OwnerSelectEntity 所有者校验回调返回的数据
type OwnerSelectEntity struct {
	ID   string
	Name string
}

type WebSocketMessage struct {
	Type string `json:"type"` // 操作类型，例如 "EntityModify", "EntityDelete"
	Data []byte `json:"data"` // 消息负载
}

// ResResult websocket 统一响应结构
type ResResult struct {
	Code   int         `json:"code"`
	Status bool        `json:"status"`
	Msg    string      `json:"msg,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

// ResDetailsResult websocket 带详情的响应结构
type ResDetailsResult struct {
	Code    int         `json:"code"`
	Status  bool        `json:"status"`
	Msg     string      `json:"msg,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Details string      `json:"details,omitempty"`
}

type WebsocketServerConfig struct {
	GWSOption    gws.ServerOption
	PingInterval time.Duration
	PingWait     time.Duration
	// IsReturnSuccess 是否把无数据的成功响应也回写给客户端
	IsReturnSuccess bool
}

// WebsocketClient 结构体来存储每个 WebSocket 连接及其相关状态
type WebsocketClient struct {
	conn         *gws.Conn
	done         chan struct{}
	cfg          *WebsocketServerConfig
	Ctx          *gin.Context
	TraceID      string
	Owner        *OwnerSession
	OwnerClients *ConnStorage
	SF           *singleflight.Group // 用于处理并发请求的缓存
}

// Context 返回升级前 HTTP 请求的 context
func (c *WebsocketClient) Context() context.Context {
	if c.Ctx == nil || c.Ctx.Request == nil {
		return context.Background()
	}
	return c.Ctx.Request.Context()
}

// 基于全局验证器的 WebSocket 版本参数绑定和验证工具函数
func (c *WebsocketClient) BindAndValid(data []byte, obj any) (bool, ValidErrors) {
	var errs ValidErrors

	// Step 1: JSON 反序列化（可替换成其他格式）
	if err := json.Unmarshal(data, obj); err != nil {
		// 解码错误处理
		errs = append(errs, &ValidError{
			Key:     "body",
			Message: "Invalid message format",
		})
		return false, errs
	}

	// Step 2: 参数验证
	if err := global.Validator.Validate.Struct(obj); err != nil {

		// 如果验证失败，检查错误类型
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			// 获取翻译器
			trans, ok := c.Ctx.Value("trans").(ut.Translator)

			// 遍历验证错误并进行翻译
			for _, validationErr := range validationErrors {
				msg := validationErr.Error()
				if ok {
					msg = validationErr.Translate(trans) // 翻译错误消息
				}
				errs = append(errs, &ValidError{
					Key:     validationErr.Field(),
					Message: msg,
				})
			}
		}
		return false, errs // 返回验证错误
	}
	return true, nil
}

// 定期发送 Ping 消息
func (c *WebsocketClient) PingLoop(PingInterval time.Duration) {
	ticker := time.NewTicker(PingInterval * time.Second) // 每 25 秒发送一次 Ping
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			log(LogInfo, "WebsocketServer Client Close Ping")
			return
		case <-ticker.C:
			if c.conn == nil {
				return
			}
			if err := c.conn.WritePing(nil); err != nil {
				log(LogError, "WebsocketServer Client Ping err ", zap.Error(err))
				return
			}
		}
	}
}

// ToResponse 将结果转换为 JSON 格式并发送给客户端
func (c *WebsocketClient) ToResponse(code *code.Code, action ...string) {

	var actionType string
	if len(action) > 0 {
		actionType = action[0]
	}
	if code.HaveDetails() {
		details := strings.Join(code.Details(), ",")
		c.send(actionType, ResDetailsResult{
			Code:    code.Code(),
			Status:  code.Status(),
			Msg:     code.Lang.GetMessage(),
			Data:    code.Data(),
			Details: details,
		}, false, false)
	} else {
		if c.cfg.IsReturnSuccess || actionType != "" || code.Code() > 200 || code.HaveData() {
			c.send(actionType, ResResult{
				Code:   code.Code(),
				Status: code.Status(),
				Msg:    code.Lang.GetMessage(),
				Data:   code.Data(),
			}, false, false)
		}
	}
	code.Reset()
}

// BroadcastResponse 将结果转换为 JSON 格式并广播给所有客户端
// 第二个options参数为是否排除自己 第三个options参数为动作类型
func (c *WebsocketClient) BroadcastResponse(code *code.Code, options ...any) {

	var actionType string
	if len(options) > 1 {
		actionType = options[1].(string)
	}

	if code.HaveDetails() {
		details := strings.Join(code.Details(), ",")
		c.send(actionType, ResDetailsResult{
			Code:    code.Code(),
			Status:  code.Status(),
			Msg:     code.Lang.GetMessage(),
			Data:    code.Data(),
			Details: details,
		}, true, options[0].(bool))
	} else {
		c.send(actionType, ResResult{
			Code:   code.Code(),
			Status: code.Status(),
			Msg:    code.Lang.GetMessage(),
			Data:   code.Data(),
		}, true, options[0].(bool))
	}

	code.Reset()
}

func (c *WebsocketClient) send(actionType string, content any, isBroadcast bool, isExcludeSelf bool) {
	responseBytes, _ := json.Marshal(content)
	if actionType != "" {
		responseBytes = []byte(fmt.Sprintf(`%s|%s`, actionType, string(responseBytes)))
	}
	if isBroadcast {
		c.broadcast(responseBytes, isExcludeSelf)
	} else {
		c.message(responseBytes)
	}
}

func (c *WebsocketClient) message(payload []byte) {
	c.conn.WriteMessage(gws.OpcodeText, payload)
}

func (c *WebsocketClient) broadcast(payload []byte, isExcludeSelf bool) {
	var b = gws.NewBroadcaster(gws.OpcodeText, payload)
	defer b.Close()

	for _, oc := range *c.OwnerClients {
		if oc.conn == nil {
			continue
		}
		if isExcludeSelf && oc.conn == c.conn {
			continue
		}

		_ = b.Broadcast(oc.conn)
	}
}

// ------------------------------------> WebsocketServer

type ConnStorage = map[*gws.Conn]*WebsocketClient

type WebsocketServer struct {
	handlers         map[string]func(*WebsocketClient, *WebSocketMessage)
	ownerDataHandler func(*WebsocketClient, string) (*OwnerSelectEntity, error)
	clients          ConnStorage
	ownerClients     map[string]ConnStorage
	mu               sync.Mutex
	up               *gws.Upgrader
	config           *WebsocketServerConfig
}

func NewWebsocketServer(c WebsocketServerConfig) *WebsocketServer {
	if c.PingInterval == 0 {
		c.PingInterval = WebSocketServerPingInterval
	}
	if c.PingWait == 0 {
		c.PingWait = WebSocketServerPingWait
	}
	wss := WebsocketServer{
		handlers:     make(map[string]func(*WebsocketClient, *WebSocketMessage)),
		clients:      make(ConnStorage),
		ownerClients: make(map[string]ConnStorage),
		config:       &c,
	}
	return &wss
}

func (w *WebsocketServer) Upgrade() {
	w.up = gws.NewUpgrader(w, &w.config.GWSOption)
}

func (w *WebsocketServer) Run() gin.HandlerFunc {

	return func(c *gin.Context) {

		w.Upgrade()
		socket, err := w.up.Upgrade(c.Writer, c.Request)
		if err != nil {
			log(LogError, "WebsocketServer Start err", zap.Error(err))
			return
		}
		client := &WebsocketClient{conn: socket, done: make(chan struct{}), cfg: w.config, Ctx: c, TraceID: c.GetString("trace_id"), SF: new(singleflight.Group)}
		w.AddClient(client)
		log(LogInfo, "WebsocketServer Start", zap.String("type", "ReadLoop"))
		go socket.ReadLoop()
	}
}

func (w *WebsocketServer) Use(action string, handler func(*WebsocketClient, *WebSocketMessage)) {
	w.handlers[action] = handler
}

// OwnerDataSelectUse 注册所有者校验回调
func (w *WebsocketServer) OwnerDataSelectUse(handler func(*WebsocketClient, string) (*OwnerSelectEntity, error)) {
	w.ownerDataHandler = handler
}

// Register 将连接绑定到一个所有者
// 消息负载为所有者 ID，校验通过后该连接进入所有者的广播组
func (w *WebsocketServer) Register(c *WebsocketClient, msg *WebSocketMessage) {

	ownerID := strings.TrimSpace(string(msg.Data))
	if ownerID == "" {
		log(LogError, "WebsocketServer Register FAILED empty owner")
		c.ToResponse(code.ErrorInvalidOwner, "Register")
		time.Sleep(2 * time.Second)
		c.conn.WriteClose(1000, []byte("RegisterFailed"))
		return
	}

	// 所有者有效性强制验证
	ownerSelect, err := w.ownerDataHandler(c, ownerID)
	if ownerSelect == nil || err != nil {
		log(LogError, "WebsocketServer Register FAILED owner not valid", zap.Error(err))
		c.ToResponse(code.ErrorInvalidOwner, "Register")
		time.Sleep(2 * time.Second)
		c.conn.WriteClose(1000, []byte("RegisterFailed"))
		return
	}

	owner := &OwnerSession{ID: ownerSelect.ID, Name: ownerSelect.Name}

	log(LogInfo, "WebsocketServer Register", zap.String("ownerId", owner.ID))
	c.Owner = owner
	w.AddOwnerClient(c)

	ownerClients := w.ownerClients[owner.ID]

	c.OwnerClients = &ownerClients
	c.ToResponse(code.Success, "Register")
	log(LogInfo, "WebsocketServer Owner Enters", zap.String("ownerId", c.Owner.ID), zap.Int("Count", len(ownerClients)))
	go c.PingLoop(w.config.PingInterval)
}

func (w *WebsocketServer) GetClient(conn *gws.Conn) *WebsocketClient {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.clients[conn]
}

func (w *WebsocketServer) AddClient(c *WebsocketClient) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clients[c.conn] = c
}

func (w *WebsocketServer) RemoveClient(conn *gws.Conn) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.clients, conn)
}

func (w *WebsocketServer) AddOwnerClient(c *WebsocketClient) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ownerClients[c.Owner.ID] == nil {
		w.ownerClients[c.Owner.ID] = make(ConnStorage)
	}
	w.ownerClients[c.Owner.ID][c.conn] = c
}

func (w *WebsocketServer) RemoveOwnerClient(c *WebsocketClient) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.ownerClients[c.Owner.ID], c.conn)
	log(LogInfo, "WebsocketServer Client Remove", zap.Int("ownerCount", len(w.clients)))
}

// BroadcastToOwner 向某个所有者的全部连接广播事件
// 服务层在变更落库后调用，通知客户端失效并重取
func (w *WebsocketServer) BroadcastToOwner(ownerID string, actionType string, data interface{}) {
	w.mu.Lock()
	clients := make([]*WebsocketClient, 0, len(w.ownerClients[ownerID]))
	for _, oc := range w.ownerClients[ownerID] {
		clients = append(clients, oc)
	}
	w.mu.Unlock()

	if len(clients) == 0 {
		return
	}

	responseBytes, _ := json.Marshal(ResResult{
		Code:   200,
		Status: true,
		Data:   data,
	})
	payload := []byte(fmt.Sprintf(`%s|%s`, actionType, string(responseBytes)))

	b := gws.NewBroadcaster(gws.OpcodeText, payload)
	defer b.Close()
	for _, oc := range clients {
		if oc.conn == nil {
			continue
		}
		_ = b.Broadcast(oc.conn)
	}
}

func (w *WebsocketServer) OnOpen(conn *gws.Conn) {
	log(LogInfo, "WebsocketServer Client Connect", zap.Int("Count", len(w.clients)))
	_ = conn.SetDeadline(time.Now().Add(w.config.PingWait * time.Second))
}

func (w *WebsocketServer) OnClose(conn *gws.Conn, err error) {

	c := w.GetClient(conn)

	w.RemoveClient(conn)

	if c.Owner != nil {
		c.done <- struct{}{}
		log(LogInfo, "WebsocketServer Owner Leave", zap.String("ownerId", c.Owner.ID))
		w.RemoveOwnerClient(c)
	}

	log(LogInfo, "WebsocketServer Client Leave", zap.Int("Count", len(w.clients)))

}

func (w *WebsocketServer) OnPing(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(w.config.PingWait * time.Second))
	_ = socket.WritePong(nil)
}

func (w *WebsocketServer) OnPong(socket *gws.Conn, payload []byte) {
	_ = socket.SetDeadline(time.Now().Add(w.config.PingWait * time.Second))
}

func (w *WebsocketServer) OnMessage(conn *gws.Conn, message *gws.Message) {
	defer message.Close()
	if message.Opcode != gws.OpcodeText {
		return
	}
	if message.Data.String() == "close" {
		conn.WriteClose(1000, []byte("ClientClose"))
		return
	}

	c := w.GetClient(conn)

	messageStr := message.Data.String()
	// 使用 strings.Index 找到分隔符的位置
	index := strings.Index(messageStr, "|")

	var msg WebSocketMessage
	if index != -1 {
		msg.Type = messageStr[:index]           // 提取分隔符之前的部分
		msg.Data = []byte(messageStr[index+1:]) // 提取分隔符之后的部分
	} else {
		log(LogError, "WebsocketServer OnMessage", zap.String("type", "Illegal message type"))
		return
	}

	if msg.Type == "Register" {
		w.Register(c, &msg)
		return
	}

	// 验证连接是否已注册所有者
	if c.Owner == nil {
		c.ToResponse(code.ErrorInvalidOwner)
		return
	}

	// 执行操作
	handler, exists := w.handlers[msg.Type]
	if exists {
		log(LogInfo, "WebsocketServer OnMessage", zap.String("Type", msg.Type))
		c := w.GetClient(conn)
		handler(c, &msg)
	} else {
		log(LogError, "WebsocketServer OnMessage", zap.String("msg", "Unknown message type"))
	}
}
