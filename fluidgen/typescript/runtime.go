package typescript

import "fmt"

// RuntimeFile is the path of the shared runtime module, relative to the
// output root. Exactly one copy is emitted per generation pass.
const RuntimeFile = "runtime.ts"

// RenderRuntime produces the runtime.ts artifact. Apart from the default
// base URL it is a fixed text: every generated client imports from it, so it
// deliberately carries almost no logic.
func RenderRuntime(baseURL string) []byte {
	return []byte(fmt.Sprintf(runtimeTemplate, header, baseURL))
}

const runtimeTemplate = `%s
const DEFAULT_BASE_URL = %q;

/** Resolves the API base URL. An explicit override wins over the default. */
export function getBaseUrl(): string {
  const override = (globalThis as { FLUID_BASE_URL?: string }).FLUID_BASE_URL;
  return override ?? DEFAULT_BASE_URL;
}

/** Uniform result wrapper for request/response calls. */
export interface ApiResult<T> {
  success: boolean;
  status: number;
  data?: T;
  error?: string;
}

/** Decodes a fetch response into an ApiResult. */
export async function handleResponse<T>(response: Response): Promise<ApiResult<T>> {
  if (!response.ok) {
    let message = response.statusText;
    try {
      const body = await response.json();
      if (body && typeof body.message === "string") message = body.message;
    } catch {
      // Non-JSON error body; the status text is all we have.
    }
    return { success: false, status: response.status, error: message };
  }
  try {
    return { success: true, status: response.status, data: (await response.json()) as T };
  } catch (err) {
    return {
      success: false,
      status: response.status,
      error: err instanceof Error ? err.message : String(err),
    };
  }
}

/**
 * Wire representations of well-known server-side types. The aliases keep
 * the original type visible at call sites even though everything arrives as
 * a plain scalar.
 */
export namespace FluidTypes {
  /** RFC 3339 timestamp (time.Time). */
  export type DateTime = string;
  /** Duration in nanoseconds (time.Duration). */
  export type Duration = number;
  /** Canonical URL text (net/url.URL). */
  export type URL = string;
  /** IP address text (net/netip.Addr). */
  export type IPAddr = string;
  /** Email address (net/mail.Address). */
  export type Email = string;
  /** Arbitrary-precision integer as decimal text (math/big.Int). */
  export type BigInt = string;
  /** Arbitrary-precision decimal as text (math/big.Float). */
  export type Decimal = string;
  /** RFC 4122 UUID text. */
  export type UUID = string;
}

/** Callbacks for server-sent event subscriptions. */
export interface SSEHandlers<T> {
  onMessage: (event: T) => void;
  onError?: (err: Error) => void;
  onOpen?: () => void;
}

/** Handle on an open server-sent event subscription. */
export interface SSEConnection {
  close: () => void;
}

/** Callbacks for line-delimited JSON streams. */
export interface StreamHandlers<T> {
  onChunk: (chunk: T) => void;
  onError?: (err: Error) => void;
  onComplete?: () => void;
}

/** Callbacks for raw byte streams. */
export interface RawHandlers {
  onChunk: (chunk: Uint8Array) => void;
  onError?: (err: Error) => void;
  onComplete?: () => void;
}

/** Handle on an open streaming request. */
export interface StreamConnection {
  close: () => void;
}
`
