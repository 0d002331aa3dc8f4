// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 transport 实现异步生成后端的 HTTP 调用层：单次尝试超时、
线性退避重试，以及 HTTP 响应到 types.Error 的映射。

# 概述

重试逻辑被拆分为两部分：

  - Classify：纯决策函数，输入一次尝试的结果（响应或传输错误），
    输出 Decision{Retry, RetryAfter, Err}，不做任何 I/O。
  - Client.Do：消费 Decision 的循环，负责限流、超时、睡眠与日志。

# 映射规则

  - 超时 → TRANSPORT_TIMEOUT（可重试）
  - 网络错误 → SERVICE_ERROR/NETWORK_ERROR（可重试）
  - 429 → RATE_LIMITED（可重试，优先使用服务端 Retry-After）
  - 5xx → SERVICE_ERROR/HTTP_5xx（可重试）
  - 401/403 → AUTHENTICATION
  - 400/422 → VALIDATION（携带服务端 message 与 details）
  - 作业端点 404 → JOB_NOT_FOUND（从路径解析 job id），其他端点 → SERVICE_ERROR/HTTP_404

重试预算耗尽时返回最后一次观察到的错误类型。
*/
package transport
