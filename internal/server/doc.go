// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 server 提供命令行运行期间的 Prometheus 指标端点。

# 概述

Manager 在独立 goroutine 中监听并挂载 /metrics，Start 非阻塞，
Shutdown 带超时优雅关闭且可重复调用。异步错误通过 Errors 通道上报。
*/
package server
