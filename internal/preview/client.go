package preview

// ClientScript is injected into the preview page. It swaps the content of
// #root on every patch message and shows load errors in an overlay.
const ClientScript = `
(function() {
    'use strict';

    var reconnectDelay = 1000;
    var maxReconnectDelay = 30000;

    function connect() {
        var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
        var ws = new WebSocket(protocol + '//' + location.host + '` + wsPath + `');

        ws.onopen = function() {
            reconnectDelay = 1000;
        };

        ws.onmessage = function(e) {
            var msg;
            try {
                msg = JSON.parse(e.data);
            } catch (err) {
                return;
            }

            switch (msg.type) {
                case 'patch':
                    clearErrorOverlay();
                    document.getElementById('root').innerHTML = msg.html || '';
                    if (msg.stats) {
                        console.log('[vdom] patch', msg.stats);
                    }
                    (msg.mutations || []).forEach(function(m) { console.debug('[vdom]', m); });
                    break;

                case 'error':
                    showErrorOverlay(msg.file, msg.error);
                    break;

                case 'clear':
                    clearErrorOverlay();
                    break;
            }
        };

        ws.onclose = function() {
            setTimeout(function() {
                reconnectDelay = Math.min(reconnectDelay * 2, maxReconnectDelay);
                connect();
            }, reconnectDelay);
        };

        ws.onerror = function() {
            ws.close();
        };
    }

    function showErrorOverlay(file, error) {
        clearErrorOverlay();
        var overlay = document.createElement('pre');
        overlay.id = 'vdom-error-overlay';
        overlay.style.cssText = 'position:fixed;top:0;left:0;right:0;margin:0;padding:16px;background:#300;color:#fcc;font:13px monospace;white-space:pre-wrap;z-index:999999;';
        overlay.textContent = (file ? file + '\n\n' : '') + error;
        document.body.appendChild(overlay);
    }

    function clearErrorOverlay() {
        var overlay = document.getElementById('vdom-error-overlay');
        if (overlay) {
            overlay.remove();
        }
    }

    if (document.readyState === 'loading') {
        document.addEventListener('DOMContentLoaded', connect);
    } else {
        connect();
    }
})();
`
